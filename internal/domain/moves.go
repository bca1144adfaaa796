package domain

import (
	"fmt"
	"slices"
)

// MoveDescriptor labels one history entry for the move list.
type MoveDescriptor struct {
	Move    int
	Cell    int // -1 for the game start
	Row     int
	Col     int
	Label   string
	Current bool
}

// Moves describes every history entry, ordered by the sort flag. Row and
// column locate the cell that changed at that move.
func (g *Game) Moves() []MoveDescriptor {
	out := make([]MoveDescriptor, len(g.history))
	for move := range g.history {
		d := MoveDescriptor{Move: move, Cell: -1, Row: -1, Col: -1, Current: move == g.current}
		if move == 0 {
			d.Label = "Go to game start"
		} else {
			d.Cell = changedCell(g.history[move-1], g.history[move])
			d.Row, d.Col = d.Cell/Size, d.Cell%Size
			d.Label = fmt.Sprintf("Go to move #%d at (%d,%d)", move, d.Row, d.Col)
		}
		out[move] = d
	}
	if g.descending {
		slices.Reverse(out)
	}
	return out
}

// changedCell returns the first index where prev and next differ.
func changedCell(prev, next Board) int {
	for i := range prev {
		if prev[i] != next[i] {
			return i
		}
	}
	return -1
}
