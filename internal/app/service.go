package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jaminalder/tictactoe-history/internal/domain"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// GameState is a point-in-time view of one session.
type GameState struct {
	ID        string
	State     domain.State
	Result    domain.Result
	Status    string
	SortLabel string
	Next      domain.Cell
	Moves     []domain.MoveDescriptor
	Created   time.Time
	Updated   time.Time
}

// Board returns the snapshot at the current move.
func (gs GameState) Board() domain.Board { return gs.State.Board() }

type session struct {
	id      string
	game    *domain.Game
	created time.Time
	updated time.Time
}

type subscriber struct {
	ch        chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// close ends delivery and releases the goroutine watching the subscriber's context.
func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		close(s.ch)
	})
}

// Service owns every running game and fans out changes to subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a service with a renderer that produces empty payloads.
func NewService(logger zerolog.Logger) *Service { return NewServiceWithRenderer(logger, nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(logger zerolog.Logger, renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = func(GameState) []byte { return nil }
	}
	return &Service{
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
		log:    logger.With().Str("component", "service").Logger(),
		now:    time.Now,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame registers a new game with an empty board.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &session{id: uuid.NewString(), game: domain.NewGame(), created: now, updated: now}
	s.games[sess.id] = sess
	s.log.Info().Str("game", sess.id).Msg("game created")
	gs := snapshot(sess)
	return &gs, nil
}

// Get returns a view of the game if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, false
	}
	gs := snapshot(sess)
	return &gs, true
}

// Len returns the number of live games.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// Play places the next mark on cell. Ignored moves return the unchanged
// state without notifying subscribers.
func (s *Service) Play(id string, cell int) (*GameState, error) {
	return s.apply(id, func(g *domain.Game) (bool, error) {
		before := g.CurrentMove()
		if _, err := g.Play(cell); err != nil {
			return false, err
		}
		changed := g.CurrentMove() != before
		ev := s.log.Debug().Str("game", id).Int("cell", cell)
		if changed {
			ev.Int("move", g.CurrentMove()).Str("status", g.Status()).Msg("move played")
		} else {
			ev.Msg("move ignored")
		}
		return changed, nil
	})
}

// JumpTo makes move the current snapshot of the game.
func (s *Service) JumpTo(id string, move int) (*GameState, error) {
	return s.apply(id, func(g *domain.Game) (bool, error) {
		if _, err := g.JumpTo(move); err != nil {
			return false, err
		}
		s.log.Debug().Str("game", id).Int("move", move).Msg("jumped")
		return true, nil
	})
}

// ToggleSort flips the move list order of the game.
func (s *Service) ToggleSort(id string) (*GameState, error) {
	return s.apply(id, func(g *domain.Game) (bool, error) {
		g.ToggleSort()
		return true, nil
	})
}

// apply runs op under the lock and broadcasts the new view when op reports a change.
func (s *Service) apply(id string, op func(*domain.Game) (bool, error)) (*GameState, error) {
	s.mu.Lock()
	sess, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	changed, err := op(sess.game)
	if err != nil {
		gs := snapshot(sess)
		s.mu.Unlock()
		return &gs, fmt.Errorf("game %s: %w", id, err)
	}
	if changed {
		sess.updated = s.now()
	}
	gs := snapshot(sess)
	if changed {
		s.fanOutLocked(id, s.render(gs))
	}
	s.mu.Unlock()
	return &gs, nil
}

// fanOutLocked delivers payload without blocking. A subscriber that has not
// read its previous payload gets it replaced, so it always holds the newest view.
func (s *Service) fanOutLocked(id string, payload []byte) {
	for sub := range s.subs[id] {
		select {
		case sub.ch <- payload:
			continue
		default:
		}
		select {
		case <-sub.ch:
			s.log.Debug().Str("game", id).Msg("replaced stale payload")
		default:
		}
		select {
		case sub.ch <- payload:
		default:
		}
	}
}

// Subscribe registers a subscriber for a game. The channel is closed when ctx
// ends, the returned func is called, or the game is pruned.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1), done: make(chan struct{})}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-sub.done:
		}
	}()
	return sub.ch, unsub, nil
}

// Prune removes games idle for longer than maxIdle and closes their subscribers.
func (s *Service) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, sess := range s.games {
		if sess.updated.After(cutoff) {
			continue
		}
		for sub := range s.subs[id] {
			sub.close()
		}
		delete(s.subs, id)
		delete(s.games, id)
		n++
	}
	if n > 0 {
		s.log.Info().Int("pruned", n).Int("remaining", len(s.games)).Msg("pruned idle games")
	}
	return n
}

// RunJanitor prunes idle games every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(maxIdle)
		}
	}
}

func snapshot(sess *session) GameState {
	g := sess.game
	return GameState{
		ID:        sess.id,
		State:     g.State(),
		Result:    g.Evaluate(),
		Status:    g.Status(),
		SortLabel: g.SortLabel(),
		Next:      g.Next(),
		Moves:     g.Moves(),
		Created:   sess.created,
		Updated:   sess.updated,
	}
}
