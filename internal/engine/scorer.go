package engine

import (
	"context"
	"github.com/myrjola/reelguess/internal/models"
	"math"
)

// split counts how a question partitions a sample of candidates.
type split struct {
	yes, no, unknown int
}

func (s split) total() int {
	return s.yes + s.no + s.unknown
}

func splitOf(ctx context.Context, ev *Evaluator, q Question, sample []models.Item) split {
	var sp split
	for _, item := range sample {
		switch ev.Eval(ctx, q.Predicate, item) {
		case True:
			sp.yes++
		case False:
			sp.no++
		case Unknown:
			sp.unknown++
		}
	}
	return sp
}

// informationScore is the binary entropy of the yes/no split minus a penalty proportional to the unknown fraction.
// ok is false for a question every sampled candidate answers the same way.
func informationScore(sp split, unknownPenalty float64) (score float64, ok bool) {
	if (sp.yes == 0 && sp.unknown == 0) || (sp.no == 0 && sp.unknown == 0) {
		return 0, false
	}
	var entropy float64
	if known := sp.yes + sp.no; known > 0 {
		p := float64(sp.yes) / float64(known)
		entropy = binaryEntropy(p)
	}
	return entropy - unknownPenalty*float64(sp.unknown)/float64(sp.total()), true
}

func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

// multiplier weights categories that narrow the pool faster than their raw entropy suggests.
func (c Config) multiplier(q Question, sp split, poolSize int) float64 {
	switch q.Category { //nolint:exhaustive // other categories are scored on entropy alone.
	case CategoryValidation:
		return c.ValidationMultiplier
	case CategoryLanguage:
		return c.LanguageMultiplier
	case CategoryFranchise:
		return c.FranchiseMultiplier
	case CategoryDirector:
		return c.DirectorMultiplier
	case CategoryCharacter:
		return c.CharacterMultiplier
	case CategoryActor:
		if sp.yes > 0 && sp.yes < sp.total() {
			return c.ActorMultiplier
		}
	case CategoryTheme:
		return c.ThemeMultiplier
	case CategoryTitle:
		if poolSize <= c.JokerBonusPool {
			return c.JokerMultiplier
		}
	}
	return 1
}

// diversityPenalised reports whether the category group of cat dominates recent, which holds diversity groups.
func (c Config) diversityPenalised(cat Category, recent []Category) bool {
	if cat.diversityExempt() {
		return false
	}
	group := cat.diversityGroup()
	if countOf(tail(recent, c.DiversityWindow), group) >= c.DiversityWindow {
		return true
	}
	if len(recent) < c.HomogeneityWindow {
		return false
	}
	window := tail(recent, c.HomogeneityWindow)
	kinds := make(map[Category]bool, len(window))
	for _, g := range window {
		kinds[g] = true
	}
	return len(kinds) < c.HomogeneityMinKinds && countOf(window, group) >= 2
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func countOf(recent []Category, group Category) int {
	n := 0
	for _, g := range recent {
		if g == group {
			n++
		}
	}
	return n
}
