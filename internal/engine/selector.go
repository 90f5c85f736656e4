package engine

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
)

type scoredQuestion struct {
	question Question
	score    float64
}

// burstThreshold is the minimum score of a question asked during a discrimination burst.
const burstThreshold = 0.1

// eligible reports whether q may be asked in st.
func (s *Session) eligible(q Question, st *State) bool {
	if st.Asked[q.Key] {
		return false
	}
	for _, key := range q.Requires {
		if !st.Asked[key] {
			return false
		}
	}
	for _, key := range q.Excludes {
		if st.Asked[key] {
			return false
		}
	}
	for _, key := range s.engine.registry.Contradicts(q.Key) {
		if st.Asked[key] {
			return false
		}
	}
	if q.IsJoker() && st.Jokers >= s.engine.cfg.MaxJokers {
		return false
	}
	return true
}

// candidates returns the eligible dynamic and static questions in priority order.
func (s *Session) candidates(ctx context.Context, st *State) []Question {
	cfg := s.engine.cfg
	questions := s.engine.synth.Synthesize(ctx, s.eval, st.Pool, st.Asked)
	questions = append(questions, s.engine.registry.Questions()...)
	questions = slices.DeleteFunc(questions, func(q Question) bool {
		return !s.eligible(q, st)
	})
	if len(st.Pool) > cfg.LargePool && len(questions) > cfg.ScoredPrefix {
		questions = questions[:cfg.ScoredPrefix]
	}
	return questions
}

// selectQuestion picks the next question. A burst ignores the diversity rule and only accepts questions scoring
// above burstThreshold.
func (s *Session) selectQuestion(ctx context.Context, burst bool) (Question, bool) {
	cfg := s.engine.cfg
	st := s.state
	sample := st.Pool[:min(len(st.Pool), cfg.SampleSize)]

	var scored []scoredQuestion
	for _, q := range s.candidates(ctx, st) {
		sp := splitOf(ctx, s.eval, q, sample)
		score, ok := informationScore(sp, cfg.UnknownPenalty)
		if !ok {
			continue
		}
		score *= cfg.multiplier(q, sp, len(st.Pool))
		if burst {
			if score > burstThreshold {
				scored = append(scored, scoredQuestion{question: q, score: score})
			}
			continue
		}
		if cfg.diversityPenalised(q.Category, st.Recent) {
			score *= cfg.DiversityPenalty
		}
		if score > 0 {
			scored = append(scored, scoredQuestion{question: q, score: score})
		}
	}
	if len(scored) == 0 {
		return Question{}, false
	}
	slices.SortStableFunc(scored, func(a, b scoredQuestion) int {
		return cmp.Compare(b.score, a.score)
	})

	pick := 0
	if st.Turn == 0 && !burst && cfg.FirstQuestionTop > 1 {
		pick = s.rng.IntN(min(len(scored), cfg.FirstQuestionTop))
	}
	chosen := scored[pick]
	s.engine.logger.LogAttrs(ctx, slog.LevelDebug, "question selected",
		slog.String("key", chosen.question.Key),
		slog.Float64("score", chosen.score),
		slog.Int("scored", len(scored)),
		slog.Bool("burst", burst))
	return chosen.question, true
}
