package engine

import (
	"cmp"
	"github.com/myrjola/reelguess/internal/models"
	"maps"
	"slices"
)

// Phase is where a session stands in the question/guess cycle.
type Phase string

const (
	// PhaseQuestion waits for the answer to State.Pending.
	PhaseQuestion Phase = "question"
	// PhaseGuess waits for the host to confirm or reject State.GuessID.
	PhaseGuess     Phase = "guess"
	PhaseFound     Phase = "found"
	PhaseExhausted Phase = "exhausted"
)

// Terminal reports whether the session has ended.
func (p Phase) Terminal() bool {
	return p == PhaseFound || p == PhaseExhausted
}

// GuessReason tells why a guess was offered.
type GuessReason string

const (
	ReasonSingle GuessReason = "single"
	ReasonRatio  GuessReason = "ratio"
	ReasonFloor  GuessReason = "floor"
	ReasonStreak GuessReason = "streak"
	// ReasonNoQuestion means no question splits the pool any further.
	ReasonNoQuestion GuessReason = "no_question"
)

// State is the complete mutable state of a session. Undo restores earlier copies of it.
type State struct {
	// Pool holds the surviving candidates ordered by score, popularity and identifier.
	Pool    []models.Item
	Scores  map[int64]float64
	Strikes map[int64]int
	Asked   map[string]bool
	// Recent holds the diversity groups of the latest questions, oldest first.
	Recent []Category
	Turn   int
	Jokers int
	// Cooldown is how many more questions must be answered before a guess may be offered.
	Cooldown  int
	StreakID  int64
	StreakLen int
	// FailedGuesses counts rejected guesses since the last discrimination burst.
	FailedGuesses int
	// Burst is how many discriminating questions remain to be asked before guessing resumes.
	Burst       int
	Phase       Phase
	Pending     *Question
	GuessID     int64
	GuessReason GuessReason
	ResultID    int64
}

// Clone returns a deep copy of st. Items and questions are immutable and shared.
func (st *State) Clone() *State {
	c := *st
	c.Pool = slices.Clone(st.Pool)
	c.Scores = maps.Clone(st.Scores)
	c.Strikes = maps.Clone(st.Strikes)
	c.Asked = maps.Clone(st.Asked)
	c.Recent = slices.Clone(st.Recent)
	if st.Pending != nil {
		q := *st.Pending
		c.Pending = &q
	}
	return &c
}

// sortPool orders the pool by score, then popularity, then identifier.
func (st *State) sortPool() {
	slices.SortStableFunc(st.Pool, func(a, b models.Item) int {
		if c := cmp.Compare(st.Scores[b.ID], st.Scores[a.ID]); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// remove drops the candidates for which drop returns true.
func (st *State) remove(drop func(models.Item) bool) {
	st.Pool = slices.DeleteFunc(st.Pool, func(item models.Item) bool {
		if !drop(item) {
			return false
		}
		delete(st.Scores, item.ID)
		delete(st.Strikes, item.ID)
		return true
	})
}

func (st *State) index(id int64) int {
	return slices.IndexFunc(st.Pool, func(item models.Item) bool {
		return item.ID == id
	})
}

// Candidate is a pool item with its running score.
type Candidate struct {
	models.Item
	Score   float64 `json:"score"`
	Strikes int     `json:"strikes"`
}

func (st *State) candidate(i int) Candidate {
	item := st.Pool[i]
	return Candidate{Item: item, Score: st.Scores[item.ID], Strikes: st.Strikes[item.ID]}
}

func (st *State) top(n int) []Candidate {
	n = min(n, len(st.Pool))
	out := make([]Candidate, n)
	for i := range n {
		out[i] = st.candidate(i)
	}
	return out
}
