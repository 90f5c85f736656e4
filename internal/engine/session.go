package engine

import (
	"context"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"log/slog"
	"math/rand/v2"
	"slices"
)

var (
	ErrEmptyCatalog     = errors.NewSentinel("empty catalog")
	ErrUnknownQuestion  = errors.NewSentinel("unknown question")
	ErrUnknownCandidate = errors.NewSentinel("unknown candidate")
	ErrNoPendingGuess   = errors.NewSentinel("no pending guess")
	ErrGuessPending     = errors.NewSentinel("guess pending")
	ErrSessionFinished  = errors.NewSentinel("session finished")
)

// revealPool is the pool size at or below which every outcome lists the remaining candidates.
const revealPool = 7

// Catalog is what a session needs from the movie catalog once the candidate pool is loaded.
type Catalog interface {
	DetailSource
	GenreNames(ctx context.Context) (map[int64]string, error)
}

// Engine holds what sessions share: configuration, the static question registry and the synthesizer.
type Engine struct {
	cfg      Config
	registry *Registry
	synth    *Synthesizer
	logger   *slog.Logger
}

// New creates an Engine.
func New(cfg Config, registry *Registry, logger *slog.Logger) (*Engine, error) {
	synth, err := NewSynthesizer(cfg.Synthesis)
	if err != nil {
		return nil, errors.Wrap(err, "new synthesizer")
	}
	return &Engine{
		cfg:      cfg,
		registry: registry,
		synth:    synth,
		logger:   logger,
	}, nil
}

// Outcome is what the host sees after every step.
type Outcome struct {
	Phase Phase `json:"phase"`
	// Question is set in PhaseQuestion.
	Question *View `json:"question,omitempty"`
	// Guess is set in PhaseGuess.
	Guess  *Candidate  `json:"guess,omitempty"`
	Reason GuessReason `json:"reason,omitempty"`
	// Result is set in PhaseFound.
	Result *Candidate `json:"result,omitempty"`
	// Shortlist lists the leading candidates when few remain or no question is left.
	Shortlist []Candidate `json:"shortlist,omitempty"`
	Remaining int         `json:"remaining"`
	Turn      int         `json:"turn"`
	// Undone reports whether an Undo restored an earlier state.
	Undone bool `json:"undone,omitempty"`
}

// Session is a single game. It is not safe for concurrent use.
type Session struct {
	engine  *Engine
	eval    *Evaluator
	rng     *rand.Rand
	state   *State
	history []*State
}

// Start begins a session over items. seed drives the randomised choice of the first question.
func (e *Engine) Start(ctx context.Context, catalog Catalog, items []models.Item, seed uint64) (*Session, Outcome, error) {
	if len(items) == 0 {
		return nil, Outcome{}, ErrEmptyCatalog
	}
	genres, err := catalog.GenreNames(ctx)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "genre names unavailable", errors.SlogError(err))
		genres = nil
	}
	st := &State{
		Pool:    slices.Clone(items),
		Scores:  make(map[int64]float64, len(items)),
		Strikes: make(map[int64]int),
		Asked:   make(map[string]bool),
		Phase:   PhaseQuestion,
	}
	st.sortPool()
	st.StreakID = st.Pool[0].ID
	s := &Session{
		engine: e,
		eval:   NewEvaluator(catalog, genres, e.logger),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // game randomness.
		state:  st,
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "session started", slog.Int("pool", len(items)))
	return s, s.advance(ctx), nil
}

// State returns a copy of the session state.
func (s *Session) State() *State {
	return s.state.Clone()
}

// Current returns the outcome of the last step without changing anything.
func (s *Session) Current() Outcome {
	return s.outcome()
}

// Answer applies a to the pending question. key may name the pending question or any static question that is
// still eligible; an empty key means the pending question.
func (s *Session) Answer(ctx context.Context, key string, a Answer) (Outcome, error) {
	st := s.state
	switch {
	case st.Phase.Terminal():
		return Outcome{}, ErrSessionFinished
	case st.Phase == PhaseGuess:
		return Outcome{}, ErrGuessPending
	}
	if a < Yes || a > ProbablyNo {
		return Outcome{}, errors.Wrap(ErrInvalidAnswer, "answer out of range", slog.Int("answer", int(a)))
	}
	q, err := s.resolve(key)
	if err != nil {
		return Outcome{}, err
	}

	s.push()
	cfg := s.engine.cfg
	st.Asked[q.Key] = true
	if q.Category == CategoryLanguage && a == Yes {
		for _, k := range s.engine.registry.LanguageKeys() {
			st.Asked[k] = true
		}
	}
	st.Recent = tail(append(st.Recent, q.Category.diversityGroup()), cfg.RecentCategories)
	if q.IsJoker() {
		st.Jokers++
	}
	st.Turn++
	if st.Cooldown > 0 {
		st.Cooldown--
	}
	if st.Burst > 0 {
		st.Burst--
	}
	st.Pending = nil

	before := len(st.Pool)
	s.apply(ctx, q, a)
	s.updateStreak()
	s.engine.logger.LogAttrs(ctx, slog.LevelDebug, "answer applied",
		slog.String("key", q.Key),
		slog.String("answer", a.String()),
		slog.Int("before", before),
		slog.Int("after", len(st.Pool)))
	return s.advance(ctx), nil
}

func (s *Session) resolve(key string) (Question, error) {
	pending := s.state.Pending
	if pending != nil && (key == "" || key == pending.Key) {
		return *pending, nil
	}
	if q, ok := s.engine.registry.Lookup(key); ok && s.eligible(q, s.state) {
		return q, nil
	}
	return Question{}, errors.Wrap(ErrUnknownQuestion, "resolve question", slog.String("key", key))
}

// ConfirmGuess settles the pending guess. A rejection eliminates the guessed candidate and holds off guessing for
// GuessCooldown questions.
func (s *Session) ConfirmGuess(ctx context.Context, accepted bool) (Outcome, error) {
	switch {
	case s.state.Phase.Terminal():
		return Outcome{}, ErrSessionFinished
	case s.state.Phase != PhaseGuess:
		return Outcome{}, ErrNoPendingGuess
	}
	logger := s.engine.logger
	if accepted {
		s.push()
		st := s.state
		st.Phase = PhaseFound
		st.ResultID = st.GuessID
		logger.LogAttrs(ctx, slog.LevelInfo, "guess accepted",
			slog.Int64("movie_id", st.ResultID), slog.Int("turn", st.Turn))
		return s.outcome(), nil
	}

	s.push()
	st := s.state
	cfg := s.engine.cfg
	rejected := st.GuessID
	st.remove(func(item models.Item) bool { return item.ID == rejected })
	st.GuessID = 0
	st.GuessReason = ""
	st.Cooldown = cfg.GuessCooldown
	st.FailedGuesses++
	if st.FailedGuesses >= cfg.FailedGuessLimit {
		st.Burst = cfg.BurstLength
		st.FailedGuesses = 0
	}
	st.sortPool()
	if len(st.Pool) > 0 {
		st.StreakID = st.Pool[0].ID
		st.StreakLen = 0
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "guess rejected",
		slog.Int64("movie_id", rejected), slog.Int("burst", st.Burst))
	return s.advance(ctx), nil
}

// Pick ends the session with a candidate the host chose from the shortlist, the ShortlistSize leading candidates.
func (s *Session) Pick(ctx context.Context, id int64) (Outcome, error) {
	if s.state.Phase.Terminal() {
		return Outcome{}, ErrSessionFinished
	}
	if i := s.state.index(id); i < 0 || i >= s.engine.cfg.ShortlistSize {
		return Outcome{}, errors.Wrap(ErrUnknownCandidate, "pick", slog.Int64("movie_id", id))
	}
	s.push()
	st := s.state
	st.Phase = PhaseFound
	st.ResultID = id
	st.Pending = nil
	s.engine.logger.LogAttrs(ctx, slog.LevelInfo, "candidate picked", slog.Int64("movie_id", id))
	return s.outcome(), nil
}

// Undo restores the state before the last answer, guess confirmation or pick. With nothing to undo the current
// outcome is returned with Undone unset.
func (s *Session) Undo(ctx context.Context) Outcome {
	if len(s.history) == 0 {
		return s.outcome()
	}
	last := len(s.history) - 1
	s.state = s.history[last]
	s.history = s.history[:last]
	s.engine.logger.LogAttrs(ctx, slog.LevelDebug, "undo", slog.Int("turn", s.state.Turn))
	out := s.outcome()
	out.Undone = true
	return out
}

func (s *Session) push() {
	s.history = append(s.history, s.state.Clone())
}

func (s *Session) updateStreak() {
	st := s.state
	if len(st.Pool) == 0 {
		st.StreakID, st.StreakLen = 0, 0
		return
	}
	if st.Pool[0].ID == st.StreakID {
		st.StreakLen++
		return
	}
	st.StreakID = st.Pool[0].ID
	st.StreakLen = 1
}

// advance moves the session to its next waiting phase.
func (s *Session) advance(ctx context.Context) Outcome {
	st := s.state
	s.eval.ForgetFailures()
	if len(st.Pool) == 0 {
		st.Phase = PhaseExhausted
		st.Pending = nil
		s.engine.logger.LogAttrs(ctx, slog.LevelInfo, "candidates exhausted", slog.Int("turn", st.Turn))
		return s.outcome()
	}
	if st.Burst > 0 {
		if q, ok := s.selectQuestion(ctx, true); ok {
			return s.ask(q)
		}
		st.Burst = 0
	}
	if reason := s.guessReason(); reason != "" {
		return s.offer(ctx, reason)
	}
	if q, ok := s.selectQuestion(ctx, false); ok {
		return s.ask(q)
	}
	if len(st.Pool) == 1 {
		return s.offer(ctx, ReasonSingle)
	}
	return s.offer(ctx, ReasonNoQuestion)
}

// guessReason returns why the leader should be guessed now, or "" to keep asking.
func (s *Session) guessReason() GuessReason {
	cfg := s.engine.cfg
	st := s.state
	if len(st.Pool) == 1 {
		return ReasonSingle
	}
	if st.Cooldown > 0 {
		return ""
	}
	first, second := st.Scores[st.Pool[0].ID], st.Scores[st.Pool[1].ID]
	switch {
	case second > 0 && first/second >= cfg.GuessRatio:
		return ReasonRatio
	case second <= 0 && first >= cfg.GuessFloor:
		return ReasonFloor
	case st.StreakLen >= cfg.GuessStreak:
		return ReasonStreak
	}
	return ""
}

func (s *Session) ask(q Question) Outcome {
	st := s.state
	st.Phase = PhaseQuestion
	st.Pending = &q
	return s.outcome()
}

func (s *Session) offer(ctx context.Context, reason GuessReason) Outcome {
	st := s.state
	st.Phase = PhaseGuess
	st.Pending = nil
	st.GuessID = st.Pool[0].ID
	st.GuessReason = reason
	s.engine.logger.LogAttrs(ctx, slog.LevelDebug, "guess offered",
		slog.Int64("movie_id", st.GuessID), slog.String("reason", string(reason)))
	return s.outcome()
}

func (s *Session) outcome() Outcome {
	st := s.state
	out := Outcome{
		Phase:     st.Phase,
		Remaining: len(st.Pool),
		Turn:      st.Turn,
	}
	switch st.Phase {
	case PhaseQuestion:
		if st.Pending != nil {
			out.Question = st.Pending.view()
		}
	case PhaseGuess:
		if i := st.index(st.GuessID); i >= 0 {
			c := st.candidate(i)
			out.Guess = &c
		}
		out.Reason = st.GuessReason
		if st.GuessReason == ReasonNoQuestion {
			out.Shortlist = st.top(s.engine.cfg.ShortlistSize)
		}
	case PhaseFound:
		if i := st.index(st.ResultID); i >= 0 {
			c := st.candidate(i)
			out.Result = &c
		}
	case PhaseExhausted:
	}
	if out.Shortlist == nil && !st.Phase.Terminal() && len(st.Pool) <= revealPool {
		out.Shortlist = st.top(len(st.Pool))
	}
	return out
}
