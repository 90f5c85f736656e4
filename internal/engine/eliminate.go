package engine

import (
	"context"
	"github.com/myrjola/reelguess/internal/models"
)

// apply folds an answer to q into the scores and eliminates candidates.
//
// Hard questions drop every candidate that contradicts a definite answer. Soft questions only adjust scores and
// strike contradicting candidates, which are dropped after MaxStrikes strikes. Unknown never eliminates.
func (s *Session) apply(ctx context.Context, q Question, a Answer) {
	cfg := s.engine.cfg
	st := s.state
	dropped := make(map[int64]bool)
	for _, item := range st.Pool {
		t := s.eval.Eval(ctx, q.Predicate, item)
		switch a {
		case Yes, No:
			// Normalise to "does the answer agree with the predicate".
			if a == No {
				t = Not(t)
			}
			if q.Hard {
				switch t {
				case True:
					st.Scores[item.ID] += s.hardMatch(a)
				case Unknown:
					st.Scores[item.ID] += s.hardUnknown(a)
				case False:
					dropped[item.ID] = true
				}
				continue
			}
			switch t {
			case True:
				st.Scores[item.ID] += cfg.SoftYesTrue
			case Unknown:
				st.Scores[item.ID] += cfg.SoftYesUnknown
			case False:
				st.Scores[item.ID] += cfg.SoftYesFalse
				st.Strikes[item.ID]++
			}
		case ProbablyYes, ProbablyNo:
			if a == ProbablyNo {
				t = Not(t)
			}
			match, miss := cfg.SoftProbMatch, cfg.SoftProbMiss
			if q.Hard {
				match, miss = cfg.HardProbMatch, cfg.HardProbMiss
			}
			switch t { //nolint:exhaustive // unknown leaves the score alone.
			case True:
				st.Scores[item.ID] += match
			case False:
				st.Scores[item.ID] += miss
			}
		case DontKnow:
			if t == Unknown {
				st.Scores[item.ID] += cfg.DontKnowUnknown
			}
		}
	}
	if q.IsValidation() && a == No && q.Target != 0 {
		dropped[q.Target] = true
	}
	st.remove(func(item models.Item) bool {
		if dropped[item.ID] {
			return true
		}
		return !q.Hard && st.Strikes[item.ID] >= cfg.MaxStrikes
	})
	st.sortPool()
}

func (s *Session) hardMatch(a Answer) float64 {
	if a == No {
		return s.engine.cfg.HardNoFalse
	}
	return s.engine.cfg.HardYesTrue
}

func (s *Session) hardUnknown(a Answer) float64 {
	if a == No {
		return s.engine.cfg.HardNoUnknown
	}
	return s.engine.cfg.HardYesUnknown
}
