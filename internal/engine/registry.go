package engine

import (
	_ "embed"
	"github.com/myrjola/reelguess/internal/errors"
	"gopkg.in/yaml.v3"
	"log/slog"
)

//go:embed questions.yaml
var questionTable []byte

// Registry is the static question table with its contradiction pairs.
//
// A Registry is immutable after loading and may be shared by every session.
type Registry struct {
	questions      []Question
	byKey          map[string]int
	contradictions map[string][]string
}

type registryFile struct {
	Contradictions [][2]string `yaml:"contradictions"`
	Questions      []Question  `yaml:"questions"`
}

// LoadRegistry parses the built-in question table.
func LoadRegistry() (*Registry, error) {
	return ParseRegistry(questionTable)
}

// ParseRegistry parses and validates a question table.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "unmarshal question table")
	}
	r := &Registry{
		questions:      file.Questions,
		byKey:          make(map[string]int, len(file.Questions)),
		contradictions: make(map[string][]string),
	}
	for i, q := range file.Questions {
		if q.Key == "" || q.Text == "" {
			return nil, errors.New("question needs key and text", slog.Int("index", i))
		}
		if _, dup := r.byKey[q.Key]; dup {
			return nil, errors.New("duplicate question key", slog.String("key", q.Key))
		}
		if !q.Category.valid() {
			return nil, errors.New("unknown category", slog.String("key", q.Key),
				slog.String("category", string(q.Category)))
		}
		if err := q.Predicate.validate(); err != nil {
			return nil, errors.Wrap(err, "invalid predicate", slog.String("key", q.Key))
		}
		r.byKey[q.Key] = i
	}
	for _, pair := range file.Contradictions {
		for _, key := range pair {
			if _, ok := r.byKey[key]; !ok {
				return nil, errors.New("contradiction names unknown key", slog.String("key", key))
			}
		}
		r.contradictions[pair[0]] = append(r.contradictions[pair[0]], pair[1])
		r.contradictions[pair[1]] = append(r.contradictions[pair[1]], pair[0])
	}
	return r, nil
}

// Questions returns the static questions in priority order. The slice must not be modified.
func (r *Registry) Questions() []Question {
	return r.questions
}

// Lookup returns the static question with key.
func (r *Registry) Lookup(key string) (Question, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Question{}, false
	}
	return r.questions[i], true
}

// Contradicts returns the keys that cannot be asked once key has been asked.
func (r *Registry) Contradicts(key string) []string {
	return r.contradictions[key]
}

// LanguageKeys returns the keys of every language question.
func (r *Registry) LanguageKeys() []string {
	var keys []string
	for _, q := range r.questions {
		if q.Category == CategoryLanguage {
			keys = append(keys, q.Key)
		}
	}
	return keys
}
