package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jaminalder/tictactoe-history/internal/app"
	"github.com/jaminalder/tictactoe-history/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	frag  *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"cellSymbol": func(c domain.Cell) string { return c.String() },
		"add":        func(a, b int) int { return a + b },
		"mul":        func(a, b int) int { return a * b },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>
.board-row{display:flex}
.square{width:3em;height:3em;font-size:1.4em;font-weight:bold}
.square.highlight{background:#ffe066}
.moves .current{font-weight:bold}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the game fragment within the same set so the page can include it
	template.Must(base.New("game").Parse(gameTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Tic-Tac-Toe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="game-container" sse-swap="game">{{template "game" .}}</div>
</div>`))
	// Standalone fragment used for htmx swaps and broadcasts
	frag := template.Must(template.New("game_only").Funcs(funcs()).Parse(gameTemplate))
	return &templates{base: base, game: game, frag: frag, index: index}
}

// renderTemplate executes t, or the named template of t's set when name is set.
// Output is buffered so a failed execution never reaches the client half written.
func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

// gameData feeds both the page and the fragment templates.
type gameData struct {
	ID    string
	Game  app.GameState
	Board domain.Board
	Error string
}

func newGameData(gs app.GameState, errMsg string) gameData {
	return gameData{ID: gs.ID, Game: gs, Board: gs.Board(), Error: errMsg}
}

const gameTemplate = `
<div id="game" class="game">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="status">{{.Game.Status}}</div>
  <div class="game-board">
  {{range $r := iter 3}}
    <div class="board-row">
    {{range $c := iter 3}}{{$i := add (mul $r 3) $c}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#game" hx-swap="outerHTML" action="/game/{{$.ID}}/play" method="post">
        <input type="hidden" name="cell" value="{{$i}}">
        <button type="submit" class="square{{if $.Game.Result.Line.Contains $i}} highlight{{end}}" data-cell="{{$i}}">{{cellSymbol (index $.Board $i)}}</button>
      </form>
    {{end}}
    </div>
  {{end}}
  </div>
  <div class="game-info">
    <ol class="moves">
    {{range .Game.Moves}}
      <li>{{if .Current}}<div class="current">{{.Label}}</div>{{else}}
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#game" hx-swap="outerHTML" action="/game/{{$.ID}}/jump" method="post">
          <input type="hidden" name="move" value="{{.Move}}">
          <button type="submit">{{.Label}}</button>
        </form>{{end}}
      </li>
    {{end}}
    </ol>
  </div>
  <div class="button-menu">
    <form hx-post="/game/{{.ID}}/sort" hx-target="#game" hx-swap="outerHTML" action="/game/{{.ID}}/sort" method="post">
      <button type="submit">{{.Game.SortLabel}}</button>
    </form>
  </div>
</div>
`
