package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to apply a sequence of cell indices
func playMoves(t *testing.T, g *Game, cells ...int) {
	t.Helper()
	for i, c := range cells {
		before := g.CurrentMove()
		_, err := g.Play(c)
		require.NoError(t, err, "move %d (cell %d)", i, c)
		require.Equal(t, before+1, g.CurrentMove(), "move %d (cell %d) was ignored", i, c)
	}
}

func TestNewGameInitialState(t *testing.T) {
	g := NewGame()
	st := g.State()
	require.Len(t, st.History, 1)
	assert.Equal(t, Board{}, st.History[0])
	assert.Equal(t, 0, st.Current)
	assert.False(t, st.Descending)
	assert.Equal(t, X, g.Next())
	assert.Equal(t, "Next player: X", g.Status())
}

func TestPlayFirstMove(t *testing.T) {
	g := NewGame()
	st, err := g.Play(0)
	require.NoError(t, err)
	require.Len(t, st.History, 2)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, board(t, "X........"), st.Board())
	assert.Equal(t, Board{}, st.History[0])
	assert.Equal(t, "Next player: O", g.Status())
}

func TestPlayOutOfBounds(t *testing.T) {
	g := NewGame()
	for _, c := range []int{-1, 9, 42} {
		st, err := g.Play(c)
		assert.ErrorIs(t, err, ErrOutOfBounds, "cell %d", c)
		assert.Len(t, st.History, 1)
		assert.Equal(t, 0, st.Current)
	}
}

func TestPlayOccupiedIsNoop(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 4)
	before := g.State()

	st, err := g.Play(4)
	require.NoError(t, err)
	assert.Equal(t, before, st)
	assert.Equal(t, O, g.Next())
}

func TestTurnsAlternateByParity(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 4, 0, 8, 2, 1, 7)
	st := g.State()
	for k := 0; k+1 < len(st.History); k++ {
		cell := changedCell(st.History[k], st.History[k+1])
		want := X
		if k%2 == 1 {
			want = O
		}
		assert.Equal(t, want, st.History[k+1][cell], "transition %d", k)
		assert.Equal(t, Empty, st.History[k][cell])
	}
}

func TestWinBlocksFurtherMoves(t *testing.T) {
	g := NewGame()
	// X wins on the top row
	playMoves(t, g, 0, 3, 1, 4, 2)
	require.Equal(t, Won, g.Evaluate().Phase())
	assert.Equal(t, "Winner: X with line: 0,1,2", g.Status())

	before := g.State()
	st, err := g.Play(8)
	require.NoError(t, err)
	assert.Equal(t, before, st)
}

func TestOWinsStatus(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 2, 1, 4, 8, 6)
	res := g.Evaluate()
	assert.Equal(t, O, res.Winner)
	assert.Equal(t, Line{2, 4, 6}, res.Line)
	assert.Equal(t, "Winner: O with line: 2,4,6", g.Status())
}

func TestDrawBlocksFurtherMoves(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 1, 2, 4, 3, 5, 7, 6, 8)
	assert.Equal(t, board(t, "XOXXOOOXX"), g.Board())
	assert.Equal(t, Drawn, g.Evaluate().Phase())
	assert.Equal(t, "No winner. Game draw.", g.Status())

	before := g.State()
	for c := 0; c < 9; c++ {
		st, err := g.Play(c)
		require.NoError(t, err)
		assert.Equal(t, before, st)
	}
}

func TestJumpTo(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 3, 1)
	before := g.State()

	st, err := g.JumpTo(1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, before.History, st.History)
	assert.Equal(t, O, g.Next())

	_, err = g.JumpTo(3)
	require.NoError(t, err)
	assert.Equal(t, 3, g.CurrentMove())
}

func TestJumpToOutOfBounds(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0)
	for _, m := range []int{-1, 2, 10} {
		st, err := g.JumpTo(m)
		assert.ErrorIs(t, err, ErrOutOfBounds, "move %d", m)
		assert.Equal(t, 1, st.Current)
		assert.Len(t, st.History, 2)
	}
}

func TestBranchDiscardsFuture(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 3, 1, 4, 8)
	require.Equal(t, 6, g.Len())
	require.Equal(t, 5, g.CurrentMove())
	old := g.State()

	_, err := g.JumpTo(2)
	require.NoError(t, err)
	st, err := g.Play(5)
	require.NoError(t, err)

	require.Len(t, st.History, 4)
	assert.Equal(t, 3, st.Current)
	assert.Equal(t, old.History[:3], st.History[:3])
	assert.Equal(t, board(t, "X..O.X..."), st.History[3])
	assert.NotContains(t, st.History, old.History[4])
	assert.NotContains(t, st.History, old.History[5])
}

func TestJumpBackIntoProgressAfterWin(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0, 3, 1, 4, 2)
	require.True(t, g.Evaluate().Decided())

	_, err := g.JumpTo(4)
	require.NoError(t, err)
	assert.Equal(t, InProgress, g.Evaluate().Phase())

	st, err := g.Play(8)
	require.NoError(t, err)
	assert.Len(t, st.History, 6)
	assert.Equal(t, 5, st.Current)
	assert.Equal(t, InProgress, Evaluate(st.Board()).Phase())
}

func TestStateIsACopy(t *testing.T) {
	g := NewGame()
	st, err := g.Play(0)
	require.NoError(t, err)
	st.History[1][0] = O
	st.History = append(st.History, Board{})

	assert.Equal(t, X, g.Board()[0])
	assert.Equal(t, 2, g.Len())
}

func TestToggleSort(t *testing.T) {
	g := NewGame()
	playMoves(t, g, 0)
	assert.Equal(t, "Sort moves descending", g.SortLabel())

	st := g.ToggleSort()
	assert.True(t, st.Descending)
	assert.Len(t, st.History, 2)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, "Sort moves ascending", g.SortLabel())

	st = g.ToggleSort()
	assert.False(t, st.Descending)
}
