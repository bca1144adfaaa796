package domain

import (
	"strconv"
	"strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Size is the board width and height.
const Size = 3

// Board is a fixed 3x3 board stored row-major.
type Board [Size * Size]Cell

// With returns a copy of b with cell i set to c.
func (b Board) With(i int, c Cell) Board {
	b[i] = c
	return b
}

// Full reports whether no cell is empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Line is a triple of cell indices.
type Line [3]int

// NoLine marks the absence of a winning line.
var NoLine = Line{-1, -1, -1}

// Contains reports whether cell i is part of the line.
func (l Line) Contains(i int) bool {
	return l[0] == i || l[1] == i || l[2] == i
}

func (l Line) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Lines lists every winning line: rows, then columns, then diagonals.
var Lines = [8]Line{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Phase is the position of a game in its lifecycle.
type Phase uint8

const (
	InProgress Phase = iota
	Won
	Drawn
)

func (p Phase) String() string {
	switch p {
	case Won:
		return "won"
	case Drawn:
		return "drawn"
	default:
		return "in_progress"
	}
}

// Result is the outcome of evaluating a board.
type Result struct {
	Winner Cell
	Line   Line
	Draw   bool
}

// Decided reports whether the board is won or drawn.
func (r Result) Decided() bool { return r.Winner != Empty || r.Draw }

func (r Result) Phase() Phase {
	switch {
	case r.Winner != Empty:
		return Won
	case r.Draw:
		return Drawn
	default:
		return InProgress
	}
}

// Evaluate checks b for a winning line in Lines order and falls back to a
// draw when the board is full. The first completed line wins, so boards that
// cannot arise in play still evaluate deterministically.
func Evaluate(b Board) Result {
	for _, ln := range Lines {
		if a := b[ln[0]]; a != Empty && a == b[ln[1]] && a == b[ln[2]] {
			return Result{Winner: a, Line: ln}
		}
	}
	return Result{Line: NoLine, Draw: b.Full()}
}
