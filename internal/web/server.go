package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jaminalder/tictactoe-history/internal/app"
	"github.com/jaminalder/tictactoe-history/internal/logging"
)

const defaultHeartbeat = 15 * time.Second

// NewServer wires routes and returns an http.Handler. It installs the HTML
// fragment renderer on s so subscribers receive ready-to-swap markup.
func NewServer(s *app.Service, logger zerolog.Logger, heartbeat time.Duration) http.Handler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       logger.With().Str("component", "web").Logger(),
		heartbeat: heartbeat,
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderGame(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/state", h.state)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
		r.Post("/sort", h.sort)
		r.Get("/events", h.events)
		r.Get("/ws", h.feed)
	})
	return r
}
