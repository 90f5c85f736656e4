package engine

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"gopkg.in/yaml.v3"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

//go:embed actors.yaml
var actorTable []byte

type actorFile struct {
	Decades     map[int][]string    `yaml:"decades"`
	Locales     map[string][]string `yaml:"locales"`
	Nationality map[string]string   `yaml:"nationality"`
}

// Synthesizer mints questions from the live candidate pool.
type Synthesizer struct {
	cfg SynthesisConfig
	// nationality maps a lower-cased actor name to an original-language code.
	nationality map[string]string
	// eras maps a lower-cased actor name to the decades they are listed for.
	eras map[string][]int
	// curated holds the languages with a curated actor set.
	curated map[string]bool
}

// NewSynthesizer loads the curated actor sets.
func NewSynthesizer(cfg SynthesisConfig) (*Synthesizer, error) {
	var file actorFile
	if err := yaml.Unmarshal(actorTable, &file); err != nil {
		return nil, errors.Wrap(err, "unmarshal actor table")
	}
	s := &Synthesizer{
		cfg:         cfg,
		nationality: make(map[string]string),
		eras:        make(map[string][]int),
		curated:     make(map[string]bool),
	}
	for decade, names := range file.Decades {
		for _, name := range names {
			key := strings.ToLower(name)
			s.nationality[key] = "en"
			s.eras[key] = append(s.eras[key], decade)
		}
	}
	if len(file.Decades) > 0 {
		s.curated["en"] = true
	}
	for lang, names := range file.Locales {
		s.curated[lang] = true
		for _, name := range names {
			s.nationality[strings.ToLower(name)] = lang
		}
	}
	for name, lang := range file.Nationality {
		s.nationality[strings.ToLower(name)] = lang
	}
	return s, nil
}

// Synthesize returns the dynamic questions for pool that have not been asked yet.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	ev *Evaluator,
	pool []models.Item,
	asked map[string]bool,
) []Question {
	n := len(pool)
	var out []Question
	if n >= s.cfg.ValidationPoolMin && n <= s.cfg.ValidationPoolMax {
		out = append(out, s.validationQuestions(ctx, ev, pool[0])...)
	}
	if n <= s.cfg.KeywordPoolMax {
		out = append(out, s.keywordQuestions(ctx, ev, pool)...)
	}
	if n <= s.cfg.PeoplePoolMax {
		out = append(out, s.peopleQuestions(ctx, ev, pool)...)
	}
	if n >= s.cfg.YearPoolMin && n <= s.cfg.YearPoolMax {
		out = append(out, s.yearQuestions(pool)...)
	}
	return slices.DeleteFunc(out, func(q Question) bool {
		return asked[q.Key]
	})
}

func (s *Synthesizer) keywordQuestions(ctx context.Context, ev *Evaluator, pool []models.Item) []Question {
	counts := make(map[string]int)
	for _, item := range pool {
		seen := make(map[string]bool)
		for _, k := range ev.Detail(ctx, item.ID).Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			counts[k]++
		}
	}
	topK := tieredLimit(len(pool), 200, 150, 120, 80)
	var out []Question
	for _, kc := range mostFrequent(counts, topK) {
		if kc.count < s.cfg.KeywordMinCount {
			break
		}
		out = append(out, Question{
			Key:       "dyn_keyword_" + slug(kc.name),
			Text:      fmt.Sprintf("Is it about %q?", kc.name),
			Category:  CategoryKeyword,
			Predicate: Predicate{Kind: KindKeyword, Terms: []string{kc.name}},
		})
	}
	return out
}

func (s *Synthesizer) peopleQuestions(ctx context.Context, ev *Evaluator, pool []models.Item) []Question {
	castWindow := s.cfg.CastWindow
	if len(pool) <= s.cfg.WideCastPool {
		castWindow = s.cfg.WideCastWindow
	}
	actors := make(map[string]int)
	directors := make(map[string]int)
	for _, item := range pool {
		d := ev.Detail(ctx, item.ID)
		for i, c := range d.Cast {
			if i >= castWindow {
				break
			}
			if name := strings.TrimSpace(c.Name); name != "" {
				actors[name]++
			}
		}
		for _, c := range d.Crew {
			if c.Job != "Director" {
				continue
			}
			if name := strings.TrimSpace(c.Name); name != "" {
				directors[name]++
			}
		}
	}

	language := dominant(pool, s.cfg.DominantShare, func(item models.Item) string { return item.Language })
	decade := dominant(pool, s.cfg.DominantShare, func(item models.Item) string {
		if year := itemYear(item); year != 0 {
			return strconv.Itoa(year / 10 * 10)
		}
		return ""
	})
	dominantDecade, _ := strconv.Atoi(decade)

	topK := tieredLimit(len(pool), 150, 120, 100, 60)
	var out []Question
	for _, ac := range mostFrequent(actors, topK) {
		if !s.actorRelevant(ac.name, language, dominantDecade) {
			continue
		}
		out = append(out, Question{
			Key:       "dyn_actor_" + slug(ac.name),
			Text:      fmt.Sprintf("Does %s star in it?", ac.name),
			Category:  CategoryActor,
			Predicate: Predicate{Kind: KindCast, Terms: []string{ac.name}},
		})
	}
	for _, dc := range mostFrequent(directors, topK) {
		out = append(out, Question{
			Key:       "dyn_director_" + slug(dc.name),
			Text:      fmt.Sprintf("Was it directed by %s?", dc.name),
			Category:  CategoryDirector,
			Hard:      true,
			Predicate: Predicate{Kind: KindDirector, Terms: []string{dc.name}},
		})
	}
	return out
}

// actorRelevant keeps the actors that fit the dominant language and decade of the pool. A dominant language with a
// curated set admits only actors of that set. Actors listed only for eras far from the dominant decade are dropped.
// Mixed pools are not filtered.
func (s *Synthesizer) actorRelevant(name, language string, decade int) bool {
	key := strings.ToLower(name)
	if language != "" {
		nationality, known := s.nationality[key]
		if !known && s.curated[language] {
			return false
		}
		if known && nationality != language {
			return false
		}
	}
	if decade != 0 {
		if eras, ok := s.eras[key]; ok && !slices.ContainsFunc(eras, func(era int) bool {
			return era >= decade-10 && era <= decade+10
		}) {
			return false
		}
	}
	return true
}

func (s *Synthesizer) yearQuestions(pool []models.Item) []Question {
	counts := make(map[string]int)
	for _, item := range pool {
		if year := itemYear(item); year != 0 {
			counts[strconv.Itoa(year)]++
		}
	}
	limit := s.cfg.MaxYears
	if len(pool) <= 10 {
		limit = s.cfg.MaxYearsSmallPool
	}
	var out []Question
	for _, yc := range mostFrequent(counts, limit) {
		year, _ := strconv.Atoi(yc.name)
		out = append(out, Question{
			Key:       "year_" + yc.name,
			Text:      fmt.Sprintf("Was it released in %d?", year),
			Category:  CategoryYear,
			Hard:      true,
			Predicate: Predicate{Kind: KindYear, MinYear: year, MaxYear: year},
		})
	}
	return out
}

// validationQuestions probes attributes of the current top candidate. Answering no removes it.
func (s *Synthesizer) validationQuestions(ctx context.Context, ev *Evaluator, top models.Item) []Question {
	d := ev.Detail(ctx, top.ID)
	var out []Question
	add := func(key, text string, p Predicate) {
		if len(out) >= s.cfg.MaxValidation {
			return
		}
		out = append(out, Question{
			Key:       "validate_" + key,
			Text:      text,
			Category:  CategoryValidation,
			Hard:      true,
			Predicate: p,
			Target:    top.ID,
		})
	}
	for i, c := range d.Cast {
		if i >= s.cfg.ValidationCast {
			break
		}
		if c.Name == "" {
			continue
		}
		add("actor_"+slug(c.Name), fmt.Sprintf("Does %s star in it?", c.Name),
			Predicate{Kind: KindCast, Terms: []string{c.Name}})
	}
	for _, c := range d.Crew {
		if c.Job == "Director" && c.Name != "" {
			add("director_"+slug(c.Name), fmt.Sprintf("Was it directed by %s?", c.Name),
				Predicate{Kind: KindDirector, Terms: []string{c.Name}})
			break
		}
	}
	for i, k := range d.Keywords {
		if i >= s.cfg.ValidationKeywords {
			break
		}
		add("keyword_"+slug(k), fmt.Sprintf("Is it about %q?", k),
			Predicate{Kind: KindKeyword, Terms: []string{k}})
	}
	if year := itemYear(top); year != 0 {
		add("year_"+strconv.Itoa(year), fmt.Sprintf("Was it released in %d?", year),
			Predicate{Kind: KindYear, MinYear: year, MaxYear: year})
	}
	if initial := TitleInitial(top.Title); initial != "" && initial != "#" {
		add("title_"+strings.ToLower(initial), fmt.Sprintf("Does the title start with %s?", initial),
			Predicate{Kind: KindTitleInitial, Terms: []string{initial}})
	}
	return out
}

type nameCount struct {
	name  string
	count int
}

// mostFrequent returns up to limit names ordered by count descending and name ascending.
func mostFrequent(counts map[string]int, limit int) []nameCount {
	sorted := make([]nameCount, 0, len(counts))
	for name, count := range counts {
		sorted = append(sorted, nameCount{name: name, count: count})
	}
	slices.SortFunc(sorted, func(a, b nameCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// dominant returns the value held by at least share of pool, or "" when the pool is mixed.
func dominant(pool []models.Item, share float64, value func(models.Item) string) string {
	if len(pool) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, item := range pool {
		if v := value(item); v != "" {
			counts[v]++
		}
	}
	top := mostFrequent(counts, 1)
	if len(top) == 0 || float64(top[0].count)/float64(len(pool)) < share {
		return ""
	}
	return top[0].name
}

// tieredLimit widens a top-K limit as the pool shrinks below 10, 30 and 50 candidates.
func tieredLimit(poolSize, upTo10, upTo30, upTo50, otherwise int) int {
	switch {
	case poolSize <= 10:
		return upTo10
	case poolSize <= 30:
		return upTo30
	case poolSize <= 50:
		return upTo50
	}
	return otherwise
}

// slug turns a name into a key fragment: lower-case letters and digits separated by single underscores.
func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
