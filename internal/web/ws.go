package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsMessage struct {
	Type    string    `json:"type"`
	Payload *gameView `json:"payload,omitempty"`
}

// feed streams the JSON game view on connect and after every change.
func (h *handlers) feed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("game", id).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()

	// the feed is one-way; reading only detects the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeState(conn, id); err != nil {
		return
	}
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writeJSON(conn, wsMessage{Type: "ping"}); err != nil {
				return
			}
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := h.writeState(conn, id); err != nil {
				h.log.Debug().Err(err).Str("game", id).Msg("websocket write failed")
				return
			}
		}
	}
}

func (h *handlers) writeState(conn *websocket.Conn, id string) error {
	gs, ok := h.svc.Get(id)
	if !ok {
		return conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
			time.Now().Add(wsWriteWait))
	}
	v := newGameView(*gs)
	return writeJSON(conn, wsMessage{Type: "state", Payload: &v})
}

func writeJSON(conn *websocket.Conn, msg wsMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
