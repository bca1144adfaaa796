package domain

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a cell or move index is outside the valid range.
var ErrOutOfBounds = errors.New("out of bounds")

// State is an immutable copy of a game's history, current move and sort order.
type State struct {
	History    []Board
	Current    int
	Descending bool
}

// Board returns the snapshot at the current move.
func (s State) Board() Board { return s.History[s.Current] }

// Game owns the move history of a single match. It is not safe for
// concurrent use; callers serialize access.
type Game struct {
	history    []Board
	current    int
	descending bool
}

// NewGame returns a game whose history holds only the empty board.
func NewGame() *Game {
	return &Game{history: []Board{{}}}
}

// State returns a copy of the game's state.
func (g *Game) State() State {
	h := make([]Board, len(g.history))
	copy(h, g.history)
	return State{History: h, Current: g.current, Descending: g.descending}
}

// Len returns the number of snapshots in history.
func (g *Game) Len() int { return len(g.history) }

// CurrentMove returns the index of the current snapshot.
func (g *Game) CurrentMove() int { return g.current }

// Descending reports whether the move list is shown newest first.
func (g *Game) Descending() bool { return g.descending }

// Board returns the current snapshot.
func (g *Game) Board() Board { return g.history[g.current] }

// Evaluate evaluates the current snapshot.
func (g *Game) Evaluate() Result { return Evaluate(g.Board()) }

// Next returns the mark whose turn it is at the current move.
func (g *Game) Next() Cell {
	if g.current%2 == 0 {
		return X
	}
	return O
}

// Play places the next mark on cell. Moves on a decided board or an occupied
// cell are ignored and leave the state unchanged. Playing from an earlier
// move discards every later snapshot.
func (g *Game) Play(cell int) (State, error) {
	if cell < 0 || cell >= len(Board{}) {
		return g.State(), fmt.Errorf("%w: cell %d", ErrOutOfBounds, cell)
	}
	b := g.Board()
	if Evaluate(b).Decided() || b[cell] != Empty {
		return g.State(), nil
	}

	next := b.With(cell, g.Next())
	g.history = append(g.history[:g.current+1], next)
	g.current = len(g.history) - 1
	return g.State(), nil
}

// JumpTo makes move the current snapshot without touching history.
func (g *Game) JumpTo(move int) (State, error) {
	if move < 0 || move >= len(g.history) {
		return g.State(), fmt.Errorf("%w: move %d of %d", ErrOutOfBounds, move, len(g.history))
	}
	g.current = move
	return g.State(), nil
}

// ToggleSort flips the move list display order.
func (g *Game) ToggleSort() State {
	g.descending = !g.descending
	return g.State()
}

// Status describes the current snapshot for display.
func (g *Game) Status() string {
	res := g.Evaluate()
	switch {
	case res.Winner != Empty:
		return fmt.Sprintf("Winner: %s with line: %s", res.Winner, res.Line)
	case res.Draw:
		return "No winner. Game draw."
	default:
		return "Next player: " + g.Next().String()
	}
}

// SortLabel names the sort action currently available.
func (g *Game) SortLabel() string {
	if g.descending {
		return "Sort moves ascending"
	}
	return "Sort moves descending"
}
