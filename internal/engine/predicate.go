package engine

import (
	"context"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"log/slog"
	"strings"
	"unicode"
)

// Kind selects the generic evaluator that interprets a Predicate.
type Kind string

const (
	KindGenre        Kind = "genre"
	KindKeyword      Kind = "keyword"
	KindFranchise    Kind = "franchise"
	KindCharacter    Kind = "character"
	KindCast         Kind = "cast"
	KindDirector     Kind = "director"
	KindLanguage     Kind = "language"
	KindCountry      Kind = "country"
	KindCollection   Kind = "collection"
	KindTitleInitial Kind = "title_initial"
	KindYear         Kind = "year"
	KindNumeric      Kind = "numeric"
	KindAdult        Kind = "adult"
)

// Field names a numeric item attribute tested by KindNumeric.
type Field string

const (
	FieldRuntime    Field = "runtime"
	FieldBudget     Field = "budget"
	FieldRevenue    Field = "revenue"
	FieldRating     Field = "rating"
	FieldVotes      Field = "votes"
	FieldPopularity Field = "popularity"
)

// Predicate is a declarative attribute test. Terms are matched case-insensitively and any term matching is enough.
type Predicate struct {
	Kind  Kind     `yaml:"kind"`
	Terms []string `yaml:"terms,omitempty"`
	// Field, AtLeast and Below parameterise KindNumeric as the half-open range [AtLeast, Below).
	Field   Field    `yaml:"field,omitempty"`
	AtLeast *float64 `yaml:"at_least,omitempty"`
	Below   *float64 `yaml:"below,omitempty"`
	// MinYear and MaxYear parameterise KindYear as an inclusive range. Zero leaves the bound open.
	MinYear int  `yaml:"min_year,omitempty"`
	MaxYear int  `yaml:"max_year,omitempty"`
	Negate  bool `yaml:"negate,omitempty"`
}

var errUnknownKind = errors.NewSentinel("unknown predicate kind")

func (p Predicate) validate() error {
	switch p.Kind {
	case KindGenre, KindKeyword, KindFranchise, KindCharacter, KindCast, KindDirector, KindLanguage, KindCountry,
		KindTitleInitial:
		if len(p.Terms) == 0 {
			return errors.New("predicate needs terms", slog.String("kind", string(p.Kind)))
		}
	case KindNumeric:
		switch p.Field {
		case FieldRuntime, FieldBudget, FieldRevenue, FieldRating, FieldVotes, FieldPopularity:
		default:
			return errors.New("unknown numeric field", slog.String("field", string(p.Field)))
		}
		if p.AtLeast == nil && p.Below == nil {
			return errors.New("numeric predicate needs a bound", slog.String("field", string(p.Field)))
		}
	case KindYear:
		if p.MinYear == 0 && p.MaxYear == 0 {
			return errors.New("year predicate needs a bound")
		}
	case KindCollection, KindAdult:
	default:
		return errors.Wrap(errUnknownKind, "validate predicate", slog.String("kind", string(p.Kind)))
	}
	return nil
}

// DetailSource supplies enriched per-identifier records.
type DetailSource interface {
	EnrichedDetail(ctx context.Context, id int64) (models.Detail, error)
}

// Evaluator interprets predicates against items.
//
// It memoises enriched records for its lifetime so that a session never repeats a successful lookup. Failed lookups
// are remembered only until ForgetFailures. Not safe for concurrent use; every session owns one.
type Evaluator struct {
	source     DetailSource
	genreNames map[int64]string
	details    map[int64]models.Detail
	failed     map[int64]bool
	logger     *slog.Logger
}

// NewEvaluator creates an Evaluator. genreNames maps pool-level genre identifiers to names.
func NewEvaluator(source DetailSource, genreNames map[int64]string, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		source:     source,
		genreNames: genreNames,
		details:    make(map[int64]models.Detail),
		failed:     make(map[int64]bool),
		logger:     logger,
	}
}

// Detail returns the enriched record of id. A failed lookup yields an empty record and is not repeated until
// ForgetFailures is called.
func (e *Evaluator) Detail(ctx context.Context, id int64) models.Detail {
	if d, ok := e.details[id]; ok {
		return d
	}
	if e.failed[id] {
		return models.Detail{}
	}
	d, err := e.source.EnrichedDetail(ctx, id)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "enrichment unavailable",
			slog.Int64("movie_id", id), errors.SlogError(err))
		e.failed[id] = true
		return models.Detail{}
	}
	e.details[id] = d
	return d
}

// ForgetFailures allows failed lookups to be retried.
func (e *Evaluator) ForgetFailures() {
	clear(e.failed)
}

// Eval tests p against item.
func (e *Evaluator) Eval(ctx context.Context, p Predicate, item models.Item) Truth {
	result := e.eval(ctx, p, item)
	if p.Negate {
		return Not(result)
	}
	return result
}

func (e *Evaluator) eval(ctx context.Context, p Predicate, item models.Item) Truth {
	switch p.Kind {
	case KindGenre:
		return e.genre(ctx, p.Terms, item)
	case KindKeyword:
		return matchKeywords(e.Detail(ctx, item.ID).Keywords, p.Terms)
	case KindFranchise:
		return e.franchise(ctx, p.Terms, item)
	case KindCharacter:
		d := e.Detail(ctx, item.ID)
		return AnyOf(matchKeywords(d.Keywords, p.Terms), matchCharacters(d.Cast, p.Terms))
	case KindCast:
		return matchCast(e.Detail(ctx, item.ID).Cast, p.Terms)
	case KindDirector:
		return matchDirectors(e.Detail(ctx, item.ID).Crew, p.Terms)
	case KindLanguage:
		if item.Language == "" {
			return Unknown
		}
		return FromBool(containsFold(p.Terms, item.Language))
	case KindCountry:
		countries := e.Detail(ctx, item.ID).Countries
		if len(countries) == 0 {
			return Unknown
		}
		for _, c := range countries {
			if containsFold(p.Terms, c) {
				return True
			}
		}
		return False
	case KindCollection:
		d := e.Detail(ctx, item.ID)
		if !d.Found {
			return Unknown
		}
		return FromBool(d.Collection != nil)
	case KindTitleInitial:
		initial := TitleInitial(item.Title)
		if initial == "" {
			return Unknown
		}
		return FromBool(containsFold(p.Terms, initial))
	case KindYear:
		year := itemYear(item)
		if year == 0 {
			return Unknown
		}
		return FromBool((p.MinYear == 0 || year >= p.MinYear) && (p.MaxYear == 0 || year <= p.MaxYear))
	case KindNumeric:
		value, ok := e.numeric(ctx, p.Field, item)
		if !ok {
			return Unknown
		}
		return FromBool((p.AtLeast == nil || value >= *p.AtLeast) && (p.Below == nil || value < *p.Below))
	case KindAdult:
		if item.Adult == nil {
			return Unknown
		}
		return FromBool(*item.Adult)
	}
	return Unknown
}

func (e *Evaluator) genre(ctx context.Context, terms []string, item models.Item) Truth {
	if len(item.GenreIDs) > 0 && len(e.genreNames) > 0 {
		resolved := false
		for _, id := range item.GenreIDs {
			name, ok := e.genreNames[id]
			if !ok {
				continue
			}
			resolved = true
			if containsFold(terms, name) {
				return True
			}
		}
		if resolved {
			return False
		}
	}
	genres := e.Detail(ctx, item.ID).Genres
	if len(genres) == 0 {
		return Unknown
	}
	for _, g := range genres {
		if containsFold(terms, g.Name) {
			return True
		}
	}
	return False
}

func (e *Evaluator) franchise(ctx context.Context, terms []string, item models.Item) Truth {
	title := Unknown
	if item.Title != "" {
		title = FromBool(containsSubstringFold(item.Title, terms))
	}
	d := e.Detail(ctx, item.ID)
	collection := Unknown
	if d.Found {
		collection = False
		if d.Collection != nil && containsSubstringFold(d.Collection.Name, terms) {
			collection = True
		}
	}
	return AnyOf(title, collection, matchKeywords(d.Keywords, terms))
}

// numeric reads field from the pool-level item, falling back to the enriched record. Zero means unknown.
func (e *Evaluator) numeric(ctx context.Context, field Field, item models.Item) (float64, bool) {
	var value float64
	switch field {
	case FieldRuntime:
		value = float64(item.Runtime)
		if value == 0 {
			value = float64(e.Detail(ctx, item.ID).Runtime)
		}
	case FieldBudget:
		value = float64(item.Budget)
		if value == 0 {
			value = float64(e.Detail(ctx, item.ID).Budget)
		}
	case FieldRevenue:
		value = float64(item.Revenue)
		if value == 0 {
			value = float64(e.Detail(ctx, item.ID).Revenue)
		}
	case FieldRating:
		value = item.Rating
	case FieldVotes:
		value = float64(item.VoteCount)
	case FieldPopularity:
		value = item.Popularity
	}
	return value, value > 0
}

func itemYear(item models.Item) int {
	if item.Year != 0 {
		return item.Year
	}
	return models.YearFromDate(item.ReleaseDate)
}

func matchKeywords(keywords []string, terms []string) Truth {
	if len(keywords) == 0 {
		return Unknown
	}
	for _, k := range keywords {
		if containsSubstringFold(k, terms) {
			return True
		}
	}
	return False
}

func matchCharacters(cast []models.CastMember, terms []string) Truth {
	observed := false
	for _, c := range cast {
		if c.Character == "" {
			continue
		}
		observed = true
		if containsSubstringFold(c.Character, terms) {
			return True
		}
	}
	if !observed {
		return Unknown
	}
	return False
}

func matchCast(cast []models.CastMember, terms []string) Truth {
	if len(cast) == 0 {
		return Unknown
	}
	for _, c := range cast {
		if containsFold(terms, c.Name) {
			return True
		}
	}
	return False
}

func matchDirectors(crew []models.CrewMember, terms []string) Truth {
	observed := false
	for _, c := range crew {
		if c.Job != "Director" {
			continue
		}
		observed = true
		if containsFold(terms, c.Name) {
			return True
		}
	}
	if !observed {
		return Unknown
	}
	return False
}

// containsFold reports whether value equals one of terms ignoring case.
func containsFold(terms []string, value string) bool {
	for _, t := range terms {
		if strings.EqualFold(t, value) {
			return true
		}
	}
	return false
}

// containsSubstringFold reports whether one of terms occurs in value ignoring case.
func containsSubstringFold(value string, terms []string) bool {
	lower := strings.ToLower(value)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

var leadingArticles = []string{"the ", "a ", "an ", "le ", "la ", "les ", "l'", "un ", "une ", "des "}

// NormalizeTitle strips a leading article and every non alphanumeric rune and upper-cases the rest.
func NormalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, article := range leadingArticles {
		if strings.HasPrefix(t, article) && len(t) > len(article) {
			t = t[len(article):]
			break
		}
	}
	var b strings.Builder
	for _, r := range t {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// TitleInitial is the bucket letter of a title: its first normalised letter, "#" for digits, "" when empty.
func TitleInitial(title string) string {
	for _, r := range NormalizeTitle(title) {
		if unicode.IsDigit(r) {
			return "#"
		}
		return string(foldAccent(r))
	}
	return ""
}

// foldAccent maps common Latin accented capitals to their base letter.
func foldAccent(r rune) rune {
	switch r {
	case 'À', 'Á', 'Â', 'Ã', 'Ä', 'Å':
		return 'A'
	case 'Ç':
		return 'C'
	case 'È', 'É', 'Ê', 'Ë':
		return 'E'
	case 'Ì', 'Í', 'Î', 'Ï':
		return 'I'
	case 'Ñ':
		return 'N'
	case 'Ò', 'Ó', 'Ô', 'Õ', 'Ö':
		return 'O'
	case 'Ù', 'Ú', 'Û', 'Ü':
		return 'U'
	}
	return r
}
