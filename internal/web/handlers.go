package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jaminalder/tictactoe-history/internal/app"
	"github.com/jaminalder/tictactoe-history/internal/domain"
)

var errBadIndex = errors.New("invalid index")

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       zerolog.Logger
	heartbeat time.Duration
}

// renderGame renders the game fragment. Broadcasts of a fragment that failed
// to render are skipped, so the error is only logged.
func (h *handlers) renderGame(gs app.GameState, errMsg string) []byte {
	b, err := renderTemplate(h.tpl.frag, "", newGameData(gs, errMsg))
	if err != nil {
		h.log.Error().Err(err).Str("game", gs.ID).Msg("render fragment")
		return nil
	}
	return b
}

// writeHTML renders t and writes it with status, or answers 500 when rendering fails.
func (h *handlers) writeHTML(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	b, err := renderTemplate(t, name, data)
	if err != nil {
		h.log.Error().Err(err).Msg("render page")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	h.writeHTML(w, http.StatusOK, h.tpl.index, "base", nil)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.writeHTML(w, http.StatusOK, h.tpl.game, "base", newGameData(*gs, ""))
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(newGameView(*gs))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "cell", h.svc.Play)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "move", h.svc.JumpTo)
}

func (h *handlers) sort(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "", func(id string, _ int) (*app.GameState, error) {
		return h.svc.ToggleSort(id)
	})
}

// mutate parses the optional integer form field, applies op and answers
// htmx requests with the game fragment and plain form posts with a redirect.
func (h *handlers) mutate(w http.ResponseWriter, r *http.Request, field string, op func(string, int) (*app.GameState, error)) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()

	var (
		gs  *app.GameState
		err error
	)
	n := 0
	if field != "" {
		n, err = strconv.Atoi(r.Form.Get(field))
		if err != nil {
			err = fmt.Errorf("%w: %s %q", errBadIndex, field, r.Form.Get(field))
		}
	}
	if err == nil {
		gs, err = op(id, n)
	}

	var errMsg string
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, app.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, errBadIndex), errors.Is(err, domain.ErrOutOfBounds):
		status = http.StatusBadRequest
		errMsg = "Invalid " + field
	default:
		status = http.StatusInternalServerError
		errMsg = "Something went wrong"
	}
	if err != nil {
		h.log.Warn().Err(err).Str("game", id).Msg("rejected request")
	}
	if gs == nil {
		if g, ok := h.svc.Get(id); ok {
			gs = g
		} else {
			http.NotFound(w, r)
			return
		}
	}

	if status == http.StatusOK && r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/game/"+id, http.StatusSeeOther)
		return
	}
	h.writeHTML(w, status, h.tpl.frag, "", newGameData(*gs, errMsg))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	// Current view first, so changes made before the stream opened are not missed.
	if gs, ok := h.svc.Get(id); ok {
		if b := h.renderGame(*gs, ""); b != nil {
			writeEvent(w, "game", b)
		}
	}
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			if b == nil {
				continue
			}
			writeEvent(w, "game", b)
			flusher.Flush()
		}
	}
}

// writeEvent writes an SSE event, prefixing every payload line with "data: ".
func writeEvent(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range bytes.Split(bytes.TrimRight(payload, "\n"), []byte("\n")) {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
