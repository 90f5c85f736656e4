package engine

// Category groups questions for scoring multipliers and the diversity rule.
type Category string

const (
	CategoryFormat     Category = "format"
	CategoryEra        Category = "era"
	CategoryGenre      Category = "genre"
	CategoryAudience   Category = "audience"
	CategoryRuntime    Category = "runtime"
	CategoryOrigin     Category = "origin"
	CategoryLanguage   Category = "language"
	CategoryPopularity Category = "popularity"
	CategoryFinance    Category = "finance"
	CategoryMeta       Category = "meta"
	CategoryTitle      Category = "title"
	CategoryDirector   Category = "director"
	CategoryFranchise  Category = "franchise"
	CategoryCharacter  Category = "character"
	CategoryActor      Category = "actor"
	CategoryTheme      Category = "theme"
	CategoryKeyword    Category = "keyword"
	CategoryYear       Category = "year"
	CategoryValidation Category = "validation"
)

func (c Category) valid() bool {
	switch c {
	case CategoryFormat, CategoryEra, CategoryGenre, CategoryAudience, CategoryRuntime, CategoryOrigin,
		CategoryLanguage, CategoryPopularity, CategoryFinance, CategoryMeta, CategoryTitle, CategoryDirector,
		CategoryFranchise, CategoryCharacter, CategoryActor, CategoryTheme, CategoryKeyword, CategoryYear,
		CategoryValidation:
		return true
	}
	return false
}

// diversityGroup folds closely related categories so that the diversity rule treats them as one.
func (c Category) diversityGroup() Category {
	switch c { //nolint:exhaustive // other categories are their own group.
	case CategoryCharacter:
		return CategoryFranchise
	case CategoryYear:
		return CategoryEra
	}
	return c
}

// diversityExempt categories are never penalised for dominating recent history.
func (c Category) diversityExempt() bool {
	return c == CategoryLanguage || c == CategoryValidation
}

// Question is a yes/no probe over the candidate pool.
type Question struct {
	Key       string    `yaml:"key"`
	Text      string    `yaml:"text"`
	Category  Category  `yaml:"category"`
	Hard      bool      `yaml:"hard"`
	Predicate Predicate `yaml:"predicate"`
	// Requires lists keys that must have been asked before this question is eligible.
	Requires []string `yaml:"requires,omitempty"`
	// Excludes lists keys whose having been asked makes this question ineligible.
	Excludes []string `yaml:"excludes,omitempty"`
	// Target is the candidate a validation probe checks. A "no" eliminates it.
	Target int64 `yaml:"-"`
}

// IsJoker reports whether q is a title-initial probe.
func (q Question) IsJoker() bool {
	return q.Category == CategoryTitle
}

// IsValidation reports whether q probes the current top candidate.
func (q Question) IsValidation() bool {
	return q.Category == CategoryValidation
}

// View is the presentation of a question handed to the host.
type View struct {
	Key      string   `json:"key"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

func (q Question) view() *View {
	return &View{Key: q.Key, Text: q.Text, Category: q.Category}
}
