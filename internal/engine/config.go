package engine

import (
	"github.com/myrjola/reelguess/internal/envstruct"
	"github.com/myrjola/reelguess/internal/errors"
)

// Config holds the hand-tuned constants of the engine. They are defaults, not verified optima.
//
// The env tags allow overriding each value with envstruct.Populate; envDefault mirrors DefaultConfig.
type Config struct {
	// SampleSize caps how many top candidates a question is scored against.
	SampleSize int `env:"REELGUESS_ENGINE_SAMPLE_SIZE" envDefault:"500"`
	// UnknownPenalty is subtracted from the entropy in proportion to the unknown fraction.
	UnknownPenalty float64 `env:"REELGUESS_ENGINE_UNKNOWN_PENALTY" envDefault:"0.35"`
	// LargePool is the pool size above which only ScoredPrefix questions are scored.
	LargePool    int `env:"REELGUESS_ENGINE_LARGE_POOL" envDefault:"200"`
	ScoredPrefix int `env:"REELGUESS_ENGINE_SCORED_PREFIX" envDefault:"150"`
	// FirstQuestionTop is how many top scorers the first question is drawn from.
	FirstQuestionTop int `env:"REELGUESS_ENGINE_FIRST_QUESTION_TOP" envDefault:"5"`

	ValidationMultiplier float64 `env:"REELGUESS_ENGINE_VALIDATION_MULTIPLIER" envDefault:"50"`
	LanguageMultiplier   float64 `env:"REELGUESS_ENGINE_LANGUAGE_MULTIPLIER" envDefault:"100"`
	FranchiseMultiplier  float64 `env:"REELGUESS_ENGINE_FRANCHISE_MULTIPLIER" envDefault:"1.6"`
	DirectorMultiplier   float64 `env:"REELGUESS_ENGINE_DIRECTOR_MULTIPLIER" envDefault:"1.5"`
	CharacterMultiplier  float64 `env:"REELGUESS_ENGINE_CHARACTER_MULTIPLIER" envDefault:"1.35"`
	ActorMultiplier      float64 `env:"REELGUESS_ENGINE_ACTOR_MULTIPLIER" envDefault:"1.3"`
	ThemeMultiplier      float64 `env:"REELGUESS_ENGINE_THEME_MULTIPLIER" envDefault:"1.25"`
	JokerMultiplier      float64 `env:"REELGUESS_ENGINE_JOKER_MULTIPLIER" envDefault:"1.2"`
	// JokerBonusPool is the pool size at or below which joker questions get JokerMultiplier.
	JokerBonusPool int `env:"REELGUESS_ENGINE_JOKER_BONUS_POOL" envDefault:"10"`
	MaxJokers      int `env:"REELGUESS_ENGINE_MAX_JOKERS" envDefault:"1"`

	// DiversityWindow is how many of the latest questions are checked for a repeated category.
	DiversityWindow int `env:"REELGUESS_ENGINE_DIVERSITY_WINDOW" envDefault:"2"`
	// DiversityPenalty multiplies the score of a question whose category dominates recent history.
	DiversityPenalty float64 `env:"REELGUESS_ENGINE_DIVERSITY_PENALTY" envDefault:"0.01"`

	SoftYesTrue     float64 `env:"REELGUESS_ENGINE_SOFT_YES_TRUE" envDefault:"1.5"`
	SoftYesFalse    float64 `env:"REELGUESS_ENGINE_SOFT_YES_FALSE" envDefault:"-2"`
	SoftYesUnknown  float64 `env:"REELGUESS_ENGINE_SOFT_YES_UNKNOWN" envDefault:"-0.5"`
	HardYesTrue     float64 `env:"REELGUESS_ENGINE_HARD_YES_TRUE" envDefault:"5"`
	HardYesUnknown  float64 `env:"REELGUESS_ENGINE_HARD_YES_UNKNOWN" envDefault:"-1"`
	HardNoFalse     float64 `env:"REELGUESS_ENGINE_HARD_NO_FALSE" envDefault:"3"`
	HardNoUnknown   float64 `env:"REELGUESS_ENGINE_HARD_NO_UNKNOWN" envDefault:"0.5"`
	HardProbMatch   float64 `env:"REELGUESS_ENGINE_HARD_PROBABLY_MATCH" envDefault:"1.5"`
	HardProbMiss    float64 `env:"REELGUESS_ENGINE_HARD_PROBABLY_MISS" envDefault:"-2"`
	SoftProbMatch   float64 `env:"REELGUESS_ENGINE_SOFT_PROBABLY_MATCH" envDefault:"0.5"`
	SoftProbMiss    float64 `env:"REELGUESS_ENGINE_SOFT_PROBABLY_MISS" envDefault:"-0.75"`
	DontKnowUnknown float64 `env:"REELGUESS_ENGINE_DONT_KNOW_UNKNOWN" envDefault:"0.2"`
	MaxStrikes      int     `env:"REELGUESS_ENGINE_MAX_STRIKES" envDefault:"3"`

	// GuessRatio is the minimum #1 to #2 score ratio that triggers a guess.
	GuessRatio float64 `env:"REELGUESS_ENGINE_GUESS_RATIO" envDefault:"2"`
	// GuessFloor is the #1 score that triggers a guess when #2 is not positive.
	GuessFloor float64 `env:"REELGUESS_ENGINE_GUESS_FLOOR" envDefault:"10"`
	// GuessStreak is how many consecutive turns #1 must hold rank 1 to trigger a guess.
	GuessStreak       int `env:"REELGUESS_ENGINE_GUESS_STREAK" envDefault:"9"`
	GuessCooldown     int `env:"REELGUESS_ENGINE_GUESS_COOLDOWN" envDefault:"2"`
	FailedGuessLimit  int `env:"REELGUESS_ENGINE_FAILED_GUESS_LIMIT" envDefault:"4"`
	BurstLength       int `env:"REELGUESS_ENGINE_BURST_LENGTH" envDefault:"3"`
	ShortlistSize     int `env:"REELGUESS_ENGINE_SHORTLIST_SIZE" envDefault:"5"`
	RecentCategories  int `env:"REELGUESS_ENGINE_RECENT_CATEGORIES" envDefault:"10"`
	HomogeneityWindow int `env:"REELGUESS_ENGINE_HOMOGENEITY_WINDOW" envDefault:"5"`
	// HomogeneityMinKinds is the minimum number of distinct categories expected in the homogeneity window.
	HomogeneityMinKinds int `env:"REELGUESS_ENGINE_HOMOGENEITY_MIN_KINDS" envDefault:"3"`

	Synthesis SynthesisConfig
}

// SynthesisConfig bounds the dynamic question synthesizer.
type SynthesisConfig struct {
	// PeoplePoolMax and KeywordPoolMax are the largest pools dynamic people and keyword questions are mined from.
	PeoplePoolMax  int `env:"REELGUESS_SYNTH_PEOPLE_POOL_MAX" envDefault:"200"`
	KeywordPoolMax int `env:"REELGUESS_SYNTH_KEYWORD_POOL_MAX" envDefault:"200"`
	// KeywordMinCount is how many candidates must share a keyword before it becomes a question.
	KeywordMinCount int `env:"REELGUESS_SYNTH_KEYWORD_MIN_COUNT" envDefault:"1"`
	// DominantShare is the share of the pool a language or decade needs to filter actor questions.
	DominantShare float64 `env:"REELGUESS_SYNTH_DOMINANT_SHARE" envDefault:"0.7"`
	CastWindow    int     `env:"REELGUESS_SYNTH_CAST_WINDOW" envDefault:"10"`
	// WideCastWindow is used for pools of at most WideCastPool candidates.
	WideCastWindow int `env:"REELGUESS_SYNTH_WIDE_CAST_WINDOW" envDefault:"15"`
	WideCastPool   int `env:"REELGUESS_SYNTH_WIDE_CAST_POOL" envDefault:"20"`
	YearPoolMin    int `env:"REELGUESS_SYNTH_YEAR_POOL_MIN" envDefault:"2"`
	YearPoolMax    int `env:"REELGUESS_SYNTH_YEAR_POOL_MAX" envDefault:"100"`
	MaxYears       int `env:"REELGUESS_SYNTH_MAX_YEARS" envDefault:"15"`
	// MaxYearsSmallPool applies to pools of at most 10 candidates.
	MaxYearsSmallPool  int `env:"REELGUESS_SYNTH_MAX_YEARS_SMALL_POOL" envDefault:"20"`
	ValidationPoolMin  int `env:"REELGUESS_SYNTH_VALIDATION_POOL_MIN" envDefault:"50"`
	ValidationPoolMax  int `env:"REELGUESS_SYNTH_VALIDATION_POOL_MAX" envDefault:"200"`
	MaxValidation      int `env:"REELGUESS_SYNTH_MAX_VALIDATION" envDefault:"15"`
	ValidationCast     int `env:"REELGUESS_SYNTH_VALIDATION_CAST" envDefault:"5"`
	ValidationKeywords int `env:"REELGUESS_SYNTH_VALIDATION_KEYWORDS" envDefault:"10"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		SampleSize:           500,
		UnknownPenalty:       0.35,
		LargePool:            200,
		ScoredPrefix:         150,
		FirstQuestionTop:     5,
		ValidationMultiplier: 50,
		LanguageMultiplier:   100,
		FranchiseMultiplier:  1.6,
		DirectorMultiplier:   1.5,
		CharacterMultiplier:  1.35,
		ActorMultiplier:      1.3,
		ThemeMultiplier:      1.25,
		JokerMultiplier:      1.2,
		JokerBonusPool:       10,
		MaxJokers:            1,
		DiversityWindow:      2,
		DiversityPenalty:     0.01,
		SoftYesTrue:          1.5,
		SoftYesFalse:         -2,
		SoftYesUnknown:       -0.5,
		HardYesTrue:          5,
		HardYesUnknown:       -1,
		HardNoFalse:          3,
		HardNoUnknown:        0.5,
		HardProbMatch:        1.5,
		HardProbMiss:         -2,
		SoftProbMatch:        0.5,
		SoftProbMiss:         -0.75,
		DontKnowUnknown:      0.2,
		MaxStrikes:           3,
		GuessRatio:           2,
		GuessFloor:           10,
		GuessStreak:          9,
		GuessCooldown:        2,
		FailedGuessLimit:     4,
		BurstLength:          3,
		ShortlistSize:        5,
		RecentCategories:     10,
		HomogeneityWindow:    5,
		HomogeneityMinKinds:  3,
		Synthesis: SynthesisConfig{
			PeoplePoolMax:      200,
			KeywordPoolMax:     200,
			KeywordMinCount:    1,
			DominantShare:      0.7,
			CastWindow:         10,
			WideCastWindow:     15,
			WideCastPool:       20,
			YearPoolMin:        2,
			YearPoolMax:        100,
			MaxYears:           15,
			MaxYearsSmallPool:  20,
			ValidationPoolMin:  50,
			ValidationPoolMax:  200,
			MaxValidation:      15,
			ValidationCast:     5,
			ValidationKeywords: 10,
		},
	}
}

// ConfigFromEnv returns DefaultConfig overridden by the REELGUESS_ENGINE_* and REELGUESS_SYNTH_* variables.
func ConfigFromEnv(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate engine config")
	}
	if err := envstruct.Populate(&cfg.Synthesis, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate synthesis config")
	}
	return cfg, nil
}
