package web

import "github.com/jaminalder/tictactoe-history/internal/app"

type moveView struct {
	Move    int    `json:"move"`
	Cell    int    `json:"cell"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// gameView is the JSON shape served by /state and pushed over /ws.
type gameView struct {
	ID         string     `json:"id"`
	Board      [9]string  `json:"board"`
	Status     string     `json:"status"`
	Next       string     `json:"next"`
	Winner     string     `json:"winner,omitempty"`
	Line       [3]int     `json:"line"`
	Draw       bool       `json:"draw"`
	Phase      string     `json:"phase"`
	Current    int        `json:"current"`
	HistoryLen int        `json:"history_len"`
	Descending bool       `json:"descending"`
	SortLabel  string     `json:"sort_label"`
	Moves      []moveView `json:"moves"`
}

func newGameView(gs app.GameState) gameView {
	v := gameView{
		ID:         gs.ID,
		Status:     gs.Status,
		Next:       gs.Next.String(),
		Winner:     gs.Result.Winner.String(),
		Line:       gs.Result.Line,
		Draw:       gs.Result.Draw,
		Phase:      gs.Result.Phase().String(),
		Current:    gs.State.Current,
		HistoryLen: len(gs.State.History),
		Descending: gs.State.Descending,
		SortLabel:  gs.SortLabel,
		Moves:      make([]moveView, len(gs.Moves)),
	}
	if gs.Result.Decided() {
		v.Next = ""
	}
	for i, c := range gs.Board() {
		v.Board[i] = c.String()
	}
	for i, m := range gs.Moves {
		v.Moves[i] = moveView(m)
	}
	return v
}
