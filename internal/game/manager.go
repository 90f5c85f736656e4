// Package game hosts concurrent engine sessions for the web service and the CLI.
package game

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/logging"
	"github.com/myrjola/reelguess/internal/random"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var ErrUnknownSession = errors.NewSentinel("unknown session")

// Manager owns the running sessions.
//
// Turns of one session are serialised while different sessions proceed concurrently. Sessions share only the
// catalog store, which must be safe for concurrent use.
type Manager struct {
	engine *engine.Engine
	store  catalog.Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *engine.Session
	// lastUsed is the Unix time in nanoseconds of the latest step.
	lastUsed atomic.Int64
}

// Started is the outcome of a new session together with its identifier.
type Started struct {
	ID string `json:"id"`
	engine.Outcome
}

func NewManager(e *engine.Engine, store catalog.Store, logger *slog.Logger) *Manager {
	return &Manager{
		engine:   e,
		store:    store,
		logger:   logger.With("source", "game"),
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// StartSession loads the candidate pool matching f and starts a session over it.
func (m *Manager) StartSession(ctx context.Context, f catalog.Filter) (Started, error) {
	items, err := m.store.ListCandidates(ctx, f)
	if err != nil {
		return Started{}, errors.Wrap(err, "list candidates")
	}
	seed, err := random.Seed()
	if err != nil {
		return Started{}, errors.Wrap(err, "seed session")
	}
	id := uuid.NewString()
	ctx = logging.WithAttrs(ctx, logging.GameID(id))
	session, out, err := m.engine.Start(ctx, m.store, items, seed)
	if err != nil {
		return Started{}, errors.Wrap(err, "start session")
	}

	e := &entry{session: session}
	e.lastUsed.Store(m.now().UnixNano())
	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	return Started{ID: id, Outcome: out}, nil
}

// Answer parses code and applies it to question key of session id.
func (m *Manager) Answer(ctx context.Context, id string, key string, code string) (engine.Outcome, error) {
	a, err := engine.ParseAnswer(code)
	if err != nil {
		return engine.Outcome{}, errors.Wrap(err, "parse answer")
	}
	return m.with(ctx, id, func(ctx context.Context, s *engine.Session) (engine.Outcome, error) {
		return s.Answer(ctx, key, a)
	})
}

// ConfirmGuess settles the pending guess of session id.
func (m *Manager) ConfirmGuess(ctx context.Context, id string, accepted bool) (engine.Outcome, error) {
	return m.with(ctx, id, func(ctx context.Context, s *engine.Session) (engine.Outcome, error) {
		return s.ConfirmGuess(ctx, accepted)
	})
}

// Pick ends session id with the host's choice of candidate.
func (m *Manager) Pick(ctx context.Context, id string, itemID int64) (engine.Outcome, error) {
	return m.with(ctx, id, func(ctx context.Context, s *engine.Session) (engine.Outcome, error) {
		return s.Pick(ctx, itemID)
	})
}

// Undo reverts the last step of session id.
func (m *Manager) Undo(ctx context.Context, id string) (engine.Outcome, error) {
	return m.with(ctx, id, func(ctx context.Context, s *engine.Session) (engine.Outcome, error) {
		return s.Undo(ctx), nil
	})
}

// Current returns the latest outcome of session id.
func (m *Manager) Current(ctx context.Context, id string) (engine.Outcome, error) {
	return m.with(ctx, id, func(_ context.Context, s *engine.Session) (engine.Outcome, error) {
		return s.Current(), nil
	})
}

// End forgets session id. Ending an unknown session is a no-op.
func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of running sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep ends the sessions that have been idle for longer than maxIdle and returns how many it ended.
func (m *Manager) Sweep(ctx context.Context, maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle).UnixNano()
	m.mu.Lock()
	ended := 0
	for id, e := range m.sessions {
		if e.lastUsed.Load() < cutoff {
			delete(m.sessions, id)
			ended++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()
	if ended > 0 {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "idle sessions ended",
			slog.Int("ended", ended), slog.Int("remaining", remaining))
	}
	return ended
}

// StartSweeper calls Sweep every interval in the background until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep(ctx, maxIdle)
			}
		}
	}()
}

func (m *Manager) with(
	ctx context.Context,
	id string,
	fn func(context.Context, *engine.Session) (engine.Outcome, error),
) (engine.Outcome, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return engine.Outcome{}, errors.Wrap(ErrUnknownSession, "lookup session", logging.GameID(id))
	}

	e.lastUsed.Store(m.now().UnixNano())
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx = logging.WithAttrs(ctx, logging.GameID(id))
	out, err := fn(ctx, e.session)
	if err != nil {
		return engine.Outcome{}, errors.Wrap(err, "session step", logging.GameID(id))
	}
	return out, nil
}
