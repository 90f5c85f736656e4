package engine_test

import (
	"context"
	"fmt"
	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"github.com/myrjola/reelguess/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	registry, err := engine.LoadRegistry()
	require.NoError(t, err)
	e, err := engine.New(engine.DefaultConfig(), registry, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	return e
}

func start(t *testing.T, movies []models.Movie) (*engine.Session, engine.Outcome, *catalog.Memory) {
	t.Helper()
	return startWith(t, engine.DefaultConfig(), movies, 42)
}

func startWith(
	t *testing.T,
	cfg engine.Config,
	movies []models.Movie,
	seed uint64,
) (*engine.Session, engine.Outcome, *catalog.Memory) {
	t.Helper()
	registry, err := engine.LoadRegistry()
	require.NoError(t, err)
	e, err := engine.New(cfg, registry, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	store := catalog.NewMemory(movies)
	items, err := store.ListCandidates(context.Background(), catalog.Filter{})
	require.NoError(t, err)
	s, out, err := e.Start(context.Background(), store, items, seed)
	require.NoError(t, err)
	return s, out, store
}

// distinctMovies returns eight English language movies, most popular first. Every static question evaluates to a
// definite truth for all of them or to unknown for all of them.
func distinctMovies() []models.Movie {
	titles := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel"}
	genres := []models.Genre{
		testhelpers.GenreAction, testhelpers.GenreDrama, testhelpers.GenreComedy, testhelpers.GenreThriller,
		testhelpers.GenreRomance, testhelpers.GenreFantasy, testhelpers.GenreCrime, testhelpers.GenreFamily,
	}
	countries := []string{"US", "FR", "GB", "JP", "DE", "KR", "IT", "ES"}
	movies := make([]models.Movie, len(titles))
	for i, title := range titles {
		movies[i] = testhelpers.NewMovie(int64(i+1), title, fmt.Sprintf("%d-06-01", 1950+10*i),
			testhelpers.WithGenres(genres[i]),
			testhelpers.WithRuntime(80+15*i),
			testhelpers.WithCountries(countries[i]),
			testhelpers.WithPopularity(float64(80-5*i)))
	}
	return movies
}

func withRating(rating float64, votes int) testhelpers.MovieOption {
	return func(m *models.Movie) {
		m.Rating = rating
		m.VoteCount = votes
	}
}

func poolIDs(s *engine.Session) []int64 {
	st := s.State()
	ids := make([]int64, len(st.Pool))
	for i, item := range st.Pool {
		ids[i] = item.ID
	}
	return ids
}

func TestSession_NarrowsToSingleCandidate(t *testing.T) {
	ctx := context.Background()
	s, out, _ := start(t, []models.Movie{
		testhelpers.NewMovie(1, "Alpha", "2000-01-01",
			testhelpers.WithGenres(testhelpers.GenreAction), testhelpers.WithPopularity(30)),
		testhelpers.NewMovie(2, "Bravo", "2001-01-01",
			testhelpers.WithGenres(testhelpers.GenreDrama), testhelpers.WithLanguage("fr"), testhelpers.WithPopularity(20)),
		testhelpers.NewMovie(3, "Charlie", "2002-01-01",
			testhelpers.WithGenres(testhelpers.GenreAction), testhelpers.WithLanguage("fr"), testhelpers.WithPopularity(10)),
	})
	require.Equal(t, engine.PhaseQuestion, out.Phase)

	out, err := s.Answer(ctx, "genre_action", engine.Yes)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 3}, poolIDs(s))
	require.Equal(t, engine.PhaseQuestion, out.Phase)

	out, err = s.Answer(ctx, "language_fr", engine.Yes)
	require.NoError(t, err)
	require.Equal(t, []int64{3}, poolIDs(s))
	require.Equal(t, engine.PhaseGuess, out.Phase)
	require.Equal(t, engine.ReasonSingle, out.Reason)
	require.Equal(t, int64(3), out.Guess.ID)

	out, err = s.ConfirmGuess(ctx, true)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseFound, out.Phase)
	require.Equal(t, int64(3), out.Result.ID)
}

func TestSession_IndistinguishableCandidatesTerminate(t *testing.T) {
	ctx := context.Background()
	twin := func(id int64, title string) models.Movie {
		return testhelpers.NewMovie(id, title, "2000-05-05",
			testhelpers.WithGenres(testhelpers.GenreDrama),
			testhelpers.WithKeywords("twins"),
			testhelpers.WithRuntime(100),
			testhelpers.WithCountries("US"))
	}
	s, out, _ := start(t, []models.Movie{twin(1, "Twin One"), twin(2, "Twin Two")})

	for step := 0; !out.Phase.Terminal(); step++ {
		require.Less(t, step, 10, "session did not terminate")
		var err error
		switch out.Phase {
		case engine.PhaseQuestion:
			out, err = s.Answer(ctx, out.Question.Key, engine.DontKnow)
		case engine.PhaseGuess:
			out, err = s.ConfirmGuess(ctx, out.Guess.ID == 2)
		case engine.PhaseFound, engine.PhaseExhausted:
		}
		require.NoError(t, err)
	}
	require.Equal(t, engine.PhaseFound, out.Phase)
	require.Equal(t, int64(2), out.Result.ID)
}

func TestSession_NoQuestionOffersShortlist(t *testing.T) {
	twin := func(id int64, title string) models.Movie {
		return testhelpers.NewMovie(id, title, "2000-05-05", testhelpers.WithGenres(testhelpers.GenreDrama))
	}
	s, out, _ := start(t, []models.Movie{twin(1, "Twin One"), twin(2, "Twin Two"), twin(3, "Twin Three")})
	require.Equal(t, engine.PhaseGuess, out.Phase)
	require.Equal(t, engine.ReasonNoQuestion, out.Reason)
	require.Len(t, out.Shortlist, 3)

	out, err := s.Pick(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseFound, out.Phase)
	require.Equal(t, int64(3), out.Result.ID)
}

func TestSession_RejectedGuessCoolsDown(t *testing.T) {
	ctx := context.Background()
	unknown := func(id int64, title, date string) models.Movie {
		return testhelpers.NewMovie(id, title, date, testhelpers.WithLanguage(""))
	}
	s, _, _ := start(t, []models.Movie{
		testhelpers.NewMovie(1, "Target", "2010-01-01",
			testhelpers.WithGenres(testhelpers.GenreAction), testhelpers.WithLanguage("fr"),
			testhelpers.WithPopularity(50)),
		unknown(2, "Umbra", "1980-01-01"),
		unknown(3, "Kestrel", "1990-01-01"),
		unknown(4, "Bravo", "2005-01-01"),
	})

	out, err := s.Answer(ctx, "genre_action", engine.Yes)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseQuestion, out.Phase)

	out, err = s.Answer(ctx, "language_fr", engine.Yes)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseGuess, out.Phase)
	require.Equal(t, engine.ReasonFloor, out.Reason)
	require.Equal(t, int64(1), out.Guess.ID)

	out, err = s.ConfirmGuess(ctx, false)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{2, 3, 4}, poolIDs(s))
	require.Equal(t, 2, s.State().Cooldown)
	require.Equal(t, engine.PhaseQuestion, out.Phase, "a guess right after a rejection")
}

func TestSession_UndoRestoresState(t *testing.T) {
	ctx := context.Background()
	s, out, _ := start(t, testhelpers.SampleMovies())
	require.Equal(t, engine.PhaseQuestion, out.Phase)

	undone := s.Undo(ctx)
	require.False(t, undone.Undone)

	before := s.State()
	for _, a := range []engine.Answer{engine.Yes, engine.No, engine.DontKnow, engine.ProbablyYes, engine.ProbablyNo} {
		_, err := s.Answer(ctx, "", a)
		require.NoError(t, err)
		undone = s.Undo(ctx)
		require.True(t, undone.Undone)
		require.Empty(t, cmp.Diff(before, s.State()), "answer %s", a)
		require.Equal(t, out.Question.Key, undone.Question.Key)
	}
}

func TestSession_LanguageYesExcludesOtherLanguages(t *testing.T) {
	ctx := context.Background()
	s, out, _ := start(t, testhelpers.SampleMovies())
	registry, err := engine.LoadRegistry()
	require.NoError(t, err)

	out, err = s.Answer(ctx, "language_en", engine.Yes)
	require.NoError(t, err)
	asked := s.State().Asked
	for _, key := range registry.LanguageKeys() {
		require.True(t, asked[key], key)
	}
	for step := 0; out.Phase == engine.PhaseQuestion && step < 20; step++ {
		require.NotEqual(t, engine.CategoryLanguage, out.Question.Category)
		out, err = s.Answer(ctx, "", engine.DontKnow)
		require.NoError(t, err)
	}
}

func TestSession_HardYesKeepsNoContradiction(t *testing.T) {
	ctx := context.Background()
	s, _, store := start(t, testhelpers.SampleMovies())
	_, err := s.Answer(ctx, "genre_action", engine.Yes)
	require.NoError(t, err)

	genres, err := store.GenreNames(ctx)
	require.NoError(t, err)
	ev := engine.NewEvaluator(store, genres, testhelpers.NewLogger(io.Discard))
	registry, err := engine.LoadRegistry()
	require.NoError(t, err)
	q, ok := registry.Lookup("genre_action")
	require.True(t, ok)
	pool := s.State().Pool
	require.NotEmpty(t, pool)
	for _, item := range pool {
		require.NotEqual(t, engine.False, ev.Eval(ctx, q.Predicate, item), item.Title)
	}
}

// TestSession_TruthfulPlayFindsTarget answers every question truthfully for each sample movie and checks the
// invariants of a full game along the way.
func TestSession_TruthfulPlayFindsTarget(t *testing.T) {
	for _, target := range testhelpers.SampleMovies() {
		t.Run(target.Title, func(t *testing.T) {
			ctx := context.Background()
			s, out, store := start(t, testhelpers.SampleMovies())
			genres, err := store.GenreNames(ctx)
			require.NoError(t, err)
			ev := engine.NewEvaluator(store, genres, testhelpers.NewLogger(io.Discard))

			asked := make(map[string]bool)
			remaining := out.Remaining
			for step := 0; !out.Phase.Terminal(); step++ {
				require.Less(t, step, 500, "session did not terminate")
				switch out.Phase {
				case engine.PhaseQuestion:
					require.False(t, asked[out.Question.Key], "question %s offered twice", out.Question.Key)
					asked[out.Question.Key] = true
					pending := s.State().Pending
					answer := engine.DontKnow
					switch ev.Eval(ctx, pending.Predicate, target.Item) {
					case engine.True:
						answer = engine.Yes
					case engine.False:
						answer = engine.No
					case engine.Unknown:
					}
					out, err = s.Answer(ctx, pending.Key, answer)
				case engine.PhaseGuess:
					out, err = s.ConfirmGuess(ctx, out.Guess.ID == target.ID)
				case engine.PhaseFound, engine.PhaseExhausted:
				}
				require.NoError(t, err)
				require.LessOrEqual(t, out.Remaining, remaining)
				remaining = out.Remaining
			}
			require.Equal(t, engine.PhaseFound, out.Phase)
			require.Equal(t, target.ID, out.Result.ID)
		})
	}
}

func TestSession_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := newEngine(t).Start(ctx, catalog.NewMemory(nil), nil, 1)
	require.ErrorIs(t, err, engine.ErrEmptyCatalog)

	s, _, _ := start(t, testhelpers.SampleMovies())
	_, err = s.Answer(ctx, "no_such_question", engine.Yes)
	require.ErrorIs(t, err, engine.ErrUnknownQuestion)
	_, err = s.Answer(ctx, "", engine.Answer(42))
	require.ErrorIs(t, err, engine.ErrInvalidAnswer)
	_, err = s.ConfirmGuess(ctx, true)
	require.ErrorIs(t, err, engine.ErrNoPendingGuess)
	_, err = s.Pick(ctx, 999999)
	require.ErrorIs(t, err, engine.ErrUnknownCandidate)
	_, err = s.Pick(ctx, s.State().Pool[5].ID)
	require.ErrorIs(t, err, engine.ErrUnknownCandidate, "only the five leaders can be picked")

	_, err = s.Answer(ctx, "genre_action", engine.Yes)
	require.NoError(t, err)
	_, err = s.Answer(ctx, "genre_action", engine.Yes)
	require.ErrorIs(t, err, engine.ErrUnknownQuestion)

	leader := s.State().Pool[0].ID
	out, err := s.Pick(ctx, leader)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseFound, out.Phase)
	require.Equal(t, leader, out.Result.ID)
	_, err = s.Answer(ctx, "", engine.Yes)
	require.True(t, errors.Is(err, engine.ErrSessionFinished))
	_, err = s.ConfirmGuess(ctx, false)
	require.ErrorIs(t, err, engine.ErrSessionFinished)
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		code    string
		want    engine.Answer
		wantErr bool
	}{
		{code: "y", want: engine.Yes},
		{code: "Yes", want: engine.Yes},
		{code: "n", want: engine.No},
		{code: "?", want: engine.DontKnow},
		{code: "dont-know", want: engine.DontKnow},
		{code: "py", want: engine.ProbablyYes},
		{code: "probably", want: engine.ProbablyYes},
		{code: " PN ", want: engine.ProbablyNo},
		{code: "probably-not", want: engine.ProbablyNo},
		{code: "maybe", wantErr: true},
		{code: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := engine.ParseAnswer(tt.code)
			if tt.wantErr {
				require.ErrorIs(t, err, engine.ErrInvalidAnswer)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSession_AnswerScoreDeltas(t *testing.T) {
	movies := []models.Movie{
		testhelpers.NewMovie(1, "Hit", "2010-01-01",
			testhelpers.WithGenres(testhelpers.GenreAction), testhelpers.WithPopularity(60)),
		testhelpers.NewMovie(2, "Modest", "2011-01-01",
			testhelpers.WithGenres(testhelpers.GenreDrama), testhelpers.WithPopularity(20)),
		testhelpers.NewMovie(3, "Obscure", "2012-01-01", testhelpers.WithPopularity(0)),
	}
	tests := []struct {
		name        string
		key         string
		answer      engine.Answer
		wantScores  map[int64]float64
		wantStrikes map[int64]int
		wantPool    []int64
	}{
		{
			name: "soft yes", key: "popular", answer: engine.Yes,
			wantScores:  map[int64]float64{1: 1.5, 2: -2, 3: -0.5},
			wantStrikes: map[int64]int{2: 1},
			wantPool:    []int64{1, 3, 2},
		},
		{
			name: "soft no", key: "popular", answer: engine.No,
			wantScores:  map[int64]float64{1: -2, 2: 1.5, 3: -0.5},
			wantStrikes: map[int64]int{1: 1},
			wantPool:    []int64{2, 3, 1},
		},
		{
			name: "soft probably", key: "popular", answer: engine.ProbablyYes,
			wantScores: map[int64]float64{1: 0.5, 2: -0.75, 3: 0},
			wantPool:   []int64{1, 3, 2},
		},
		{
			name: "soft probably not", key: "popular", answer: engine.ProbablyNo,
			wantScores: map[int64]float64{1: -0.75, 2: 0.5, 3: 0},
			wantPool:   []int64{2, 3, 1},
		},
		{
			name: "soft dont know", key: "popular", answer: engine.DontKnow,
			wantScores: map[int64]float64{1: 0, 2: 0, 3: 0.2},
			wantPool:   []int64{3, 1, 2},
		},
		{
			name: "hard yes", key: "genre_action", answer: engine.Yes,
			wantScores: map[int64]float64{1: 5, 3: -1},
			wantPool:   []int64{1, 3},
		},
		{
			name: "hard no", key: "genre_action", answer: engine.No,
			wantScores: map[int64]float64{2: 3, 3: 0.5},
			wantPool:   []int64{2, 3},
		},
		{
			name: "hard probably", key: "genre_action", answer: engine.ProbablyYes,
			wantScores: map[int64]float64{1: 1.5, 2: -2, 3: 0},
			wantPool:   []int64{1, 3, 2},
		},
		{
			name: "hard probably not", key: "genre_action", answer: engine.ProbablyNo,
			wantScores: map[int64]float64{1: -2, 2: 1.5, 3: 0},
			wantPool:   []int64{2, 3, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := start(t, movies)
			_, err := s.Answer(context.Background(), tt.key, tt.answer)
			require.NoError(t, err)
			st := s.State()
			require.Equal(t, tt.wantPool, poolIDs(s))
			for id, want := range tt.wantScores {
				require.InDelta(t, want, st.Scores[id], 1e-9, "score of %d", id)
			}
			for _, id := range tt.wantPool {
				require.Equal(t, tt.wantStrikes[id], st.Strikes[id], "strikes of %d", id)
			}
		})
	}
}

func TestSession_SoftStrikesRemoveAtMaxStrikes(t *testing.T) {
	ctx := context.Background()
	s, _, _ := start(t, []models.Movie{
		testhelpers.NewMovie(1, "Leader", "2010-01-01", testhelpers.WithGenres(testhelpers.GenreAction),
			testhelpers.WithPopularity(60), withRating(9, 20000)),
		testhelpers.NewMovie(2, "Striker", "1995-01-01", testhelpers.WithGenres(testhelpers.GenreDrama),
			testhelpers.WithPopularity(20), withRating(5, 100)),
		testhelpers.NewMovie(3, "Quiet", "1980-01-01", testhelpers.WithGenres(testhelpers.GenreComedy),
			testhelpers.WithPopularity(0)),
	})
	require.Equal(t, 3, engine.DefaultConfig().MaxStrikes)

	steps := []struct {
		key         string
		wantStrikes int
		wantPool    []int64
	}{
		{key: "popular", wantStrikes: 1, wantPool: []int64{1, 3, 2}},
		{key: "well_rated", wantStrikes: 2, wantPool: []int64{1, 3, 2}},
		{key: "widely_reviewed", wantStrikes: 0, wantPool: []int64{1, 3}},
	}
	for _, step := range steps {
		out, err := s.Answer(ctx, step.key, engine.Yes)
		require.NoError(t, err, step.key)
		require.Equal(t, step.wantPool, poolIDs(s), step.key)
		require.Equal(t, step.wantStrikes, s.State().Strikes[2], step.key)
		require.Zero(t, s.State().Strikes[3], "unknown never strikes")
		require.Equal(t, engine.PhaseQuestion, out.Phase, step.key)
	}
	require.InDelta(t, 4.5, s.State().Scores[1], 1e-9)
	require.InDelta(t, -1.5, s.State().Scores[3], 1e-9)
}

func TestSession_StreakGuess(t *testing.T) {
	ctx := context.Background()
	cfg := engine.DefaultConfig()
	cfg.GuessStreak = 3
	s, out, _ := startWith(t, cfg, distinctMovies(), 42)

	for turn := 1; turn <= cfg.GuessStreak; turn++ {
		require.Equal(t, engine.PhaseQuestion, out.Phase, "turn %d", turn)
		var err error
		out, err = s.Answer(ctx, "", engine.DontKnow)
		require.NoError(t, err)
		require.Equal(t, int64(1), s.State().Pool[0].ID, "leader holds rank 1")
		require.Equal(t, turn, s.State().StreakLen)
	}
	require.Equal(t, engine.PhaseGuess, out.Phase)
	require.Equal(t, engine.ReasonStreak, out.Reason)
	require.Equal(t, int64(1), out.Guess.ID)
	require.Equal(t, cfg.GuessStreak, out.Turn)
}

func TestSession_RejectedGuessesTriggerBurst(t *testing.T) {
	ctx := context.Background()
	cfg := engine.DefaultConfig()
	// Guess whenever no burst is running.
	cfg.GuessStreak = 0
	cfg.GuessCooldown = 0
	cfg.FailedGuessLimit = 2
	s, out, _ := startWith(t, cfg, distinctMovies(), 42)

	tests := []struct {
		name      string
		step      func() (engine.Outcome, error)
		wantPhase engine.Phase
		wantBurst int
	}{
		{name: "first rejection", step: func() (engine.Outcome, error) { return s.ConfirmGuess(ctx, false) },
			wantPhase: engine.PhaseGuess},
		{name: "second rejection", step: func() (engine.Outcome, error) { return s.ConfirmGuess(ctx, false) },
			wantPhase: engine.PhaseQuestion, wantBurst: cfg.BurstLength},
		{name: "first burst answer", step: func() (engine.Outcome, error) { return s.Answer(ctx, "", engine.DontKnow) },
			wantPhase: engine.PhaseQuestion, wantBurst: cfg.BurstLength - 1},
		{name: "second burst answer", step: func() (engine.Outcome, error) { return s.Answer(ctx, "", engine.DontKnow) },
			wantPhase: engine.PhaseQuestion, wantBurst: cfg.BurstLength - 2},
		{name: "burst over", step: func() (engine.Outcome, error) { return s.Answer(ctx, "", engine.DontKnow) },
			wantPhase: engine.PhaseGuess},
	}
	require.Equal(t, engine.PhaseGuess, out.Phase)
	require.Equal(t, 3, cfg.BurstLength)
	for _, tt := range tests {
		var err error
		out, err = tt.step()
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.wantPhase, out.Phase, tt.name)
		require.Equal(t, tt.wantBurst, s.State().Burst, tt.name)
	}
	require.Zero(t, s.State().FailedGuesses)
	require.Equal(t, engine.ReasonStreak, out.Reason)
	require.Equal(t, 6, out.Remaining)
}

func TestSession_ValidationNoRemovesTarget(t *testing.T) {
	ctx := context.Background()
	movies := []models.Movie{
		testhelpers.NewMovie(1, "Target", "2015-01-01",
			testhelpers.WithGenres(testhelpers.GenreDrama),
			testhelpers.WithCast("Lead Actor", "Second Actor", "Third Actor"),
			testhelpers.WithDirector("Target Director"),
			testhelpers.WithPopularity(90)),
	}
	for i := range 59 {
		movies = append(movies, testhelpers.NewMovie(int64(100+i), fmt.Sprintf("Filler %02d", i),
			fmt.Sprintf("%d-01-01", 1950+i),
			testhelpers.WithGenres(testhelpers.GenreComedy),
			testhelpers.WithCast(fmt.Sprintf("Filler Actor %d", i)),
			testhelpers.WithDirector(fmt.Sprintf("Filler Director %d", i))))
	}
	s, out, _ := start(t, movies)

	for step := 0; out.Question.Category != engine.CategoryValidation; step++ {
		require.Less(t, step, 10, "no validation question asked")
		var err error
		out, err = s.Answer(ctx, "", engine.DontKnow)
		require.NoError(t, err)
		require.Equal(t, engine.PhaseQuestion, out.Phase)
	}
	pending := s.State().Pending
	require.Equal(t, int64(1), pending.Target)

	out, err := s.Answer(ctx, pending.Key, engine.No)
	require.NoError(t, err)
	require.NotContains(t, poolIDs(s), int64(1))
	require.Equal(t, 59, out.Remaining)
}

func TestSession_OneJokerPerSession(t *testing.T) {
	ctx := context.Background()
	s, _, _ := start(t, testhelpers.SampleMovies())

	out, err := s.Answer(ctx, "joker_title_a_d", engine.DontKnow)
	require.NoError(t, err)
	require.Equal(t, 1, s.State().Jokers)

	_, err = s.Answer(ctx, "joker_title_e_h", engine.DontKnow)
	require.ErrorIs(t, err, engine.ErrUnknownQuestion)

	for step := 0; out.Phase == engine.PhaseQuestion && step < 30; step++ {
		require.NotEqual(t, engine.CategoryTitle, out.Question.Category, "second joker offered")
		out, err = s.Answer(ctx, "", engine.DontKnow)
		require.NoError(t, err)
	}
}

func TestSession_AnswerByKeyRespectsEligibility(t *testing.T) {
	tests := []struct {
		name    string
		first   string
		key     string
		wantErr bool
	}{
		{name: "contradiction partner", first: "big_budget", key: "small_budget", wantErr: true},
		{name: "contradiction partner reversed", first: "runtime_ge_150", key: "runtime_lt_90", wantErr: true},
		{name: "era contradiction", first: "after_2000", key: "before_1990", wantErr: true},
		{name: "excluded", first: "big_budget", key: "is_indie", wantErr: true},
		{name: "unmet requirement", key: "very_popular", wantErr: true},
		{name: "met requirement", first: "popular", key: "very_popular"},
		{name: "unrelated", first: "big_budget", key: "genre_action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, _, _ := start(t, testhelpers.SampleMovies())
			if tt.first != "" {
				out, err := s.Answer(ctx, tt.first, engine.DontKnow)
				require.NoError(t, err)
				require.Equal(t, engine.PhaseQuestion, out.Phase)
			}
			_, err := s.Answer(ctx, tt.key, engine.DontKnow)
			if tt.wantErr {
				require.ErrorIs(t, err, engine.ErrUnknownQuestion)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSession_ContradictedPartnerIsNeverOffered(t *testing.T) {
	ctx := context.Background()
	s, _, _ := start(t, testhelpers.SampleMovies())
	out, err := s.Answer(ctx, "big_budget", engine.DontKnow)
	require.NoError(t, err)
	for step := 0; out.Phase == engine.PhaseQuestion && step < 40; step++ {
		require.NotEqual(t, "small_budget", out.Question.Key)
		out, err = s.Answer(ctx, "", engine.DontKnow)
		require.NoError(t, err)
	}
}

func TestSession_FirstQuestionIsDrawnFromTheTopScorers(t *testing.T) {
	tests := []struct {
		name        string
		top         int
		minDistinct int
		maxDistinct int
	}{
		{name: "deterministic", top: 1, minDistinct: 1, maxDistinct: 1},
		{name: "top five", top: 5, minDistinct: 2, maxDistinct: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := engine.DefaultConfig()
			cfg.FirstQuestionTop = tt.top
			seen := make(map[string]bool)
			for seed := range uint64(40) {
				_, out, _ := startWith(t, cfg, testhelpers.SampleMovies(), seed)
				require.Equal(t, engine.PhaseQuestion, out.Phase)
				seen[out.Question.Key] = true

				_, again, _ := startWith(t, cfg, testhelpers.SampleMovies(), seed)
				require.Equal(t, out.Question.Key, again.Question.Key, "same seed, same question")
			}
			require.GreaterOrEqual(t, len(seen), tt.minDistinct)
			require.LessOrEqual(t, len(seen), tt.maxDistinct)
		})
	}
}

func TestSession_PickIsLimitedToShortlist(t *testing.T) {
	ctx := context.Background()
	cfg := engine.DefaultConfig()
	tests := []struct {
		name    string
		rank    int
		wantErr bool
	}{
		{name: "leader", rank: 0},
		{name: "last shortlisted", rank: cfg.ShortlistSize - 1},
		{name: "beyond shortlist", rank: cfg.ShortlistSize, wantErr: true},
		{name: "last candidate", rank: len(distinctMovies()) - 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := startWith(t, cfg, distinctMovies(), 42)
			id := s.State().Pool[tt.rank].ID
			out, err := s.Pick(ctx, id)
			if tt.wantErr {
				require.ErrorIs(t, err, engine.ErrUnknownCandidate)
				require.Equal(t, engine.PhaseQuestion, s.Current().Phase)
				return
			}
			require.NoError(t, err)
			require.Equal(t, engine.PhaseFound, out.Phase)
			require.Equal(t, id, out.Result.ID)
		})
	}
}
