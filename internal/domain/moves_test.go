package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovesAtStart(t *testing.T) {
	g := NewGame()
	moves := g.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, MoveDescriptor{Move: 0, Cell: -1, Row: -1, Col: -1, Label: "Go to game start", Current: true}, moves[0])
}

func TestMovesReportChangedCell(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 4, 8, 0)
	moves := g.Moves()
	require.Len(t, moves, 4)

	labels := make([]string, len(moves))
	for i, m := range moves {
		labels[i] = m.Label
	}
	assert.Equal(t, []string{
		"Go to game start",
		"Go to move #1 at (1,1)",
		"Go to move #2 at (2,2)",
		"Go to move #3 at (0,0)",
	}, labels)
	assert.Equal(t, 8, moves[2].Cell)
	assert.True(t, moves[3].Current)
	assert.False(t, moves[0].Current)
}

func TestMovesMarkCurrentAfterJump(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 1, 2)
	_, err := g.JumpTo(1)
	require.NoError(t, err)

	for _, m := range g.Moves() {
		assert.Equal(t, m.Move == 1, m.Current, "move %d", m.Move)
	}
}

func TestMovesDescending(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 1, 2)
	asc := g.Moves()
	g.ToggleSort()
	desc := g.Moves()

	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
	assert.Equal(t, 3, desc[0].Move)
	// history order is unaffected
	assert.Equal(t, board(t, "X........"), g.State().History[1])
}
