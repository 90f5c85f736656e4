package engine_test

import (
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLoadRegistry(t *testing.T) {
	registry, err := engine.LoadRegistry()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(registry.Questions()), 150)

	q, ok := registry.Lookup("genre_action")
	require.True(t, ok)
	require.True(t, q.Hard)
	require.Equal(t, engine.CategoryGenre, q.Category)

	require.Contains(t, registry.Contradicts("big_budget"), "small_budget")
	require.Contains(t, registry.Contradicts("small_budget"), "big_budget")
	require.Contains(t, registry.LanguageKeys(), "language_fr")
}

func TestParseRegistry(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid",
			yaml: `
questions:
  - {key: a, text: "A?", category: genre, hard: true, predicate: {kind: genre, terms: [Action]}}
  - {key: b, text: "B?", category: genre, predicate: {kind: genre, terms: [Drama]}}
contradictions:
  - [a, b]
`,
		},
		{
			name: "duplicate key",
			yaml: `
questions:
  - {key: a, text: "A?", category: genre, predicate: {kind: genre, terms: [Action]}}
  - {key: a, text: "A again?", category: genre, predicate: {kind: genre, terms: [Drama]}}
`,
			wantErr: true,
		},
		{
			name: "unknown kind",
			yaml: `
questions:
  - {key: a, text: "A?", category: genre, predicate: {kind: mood, terms: [happy]}}
`,
			wantErr: true,
		},
		{
			name: "unknown category",
			yaml: `
questions:
  - {key: a, text: "A?", category: vibes, predicate: {kind: genre, terms: [Action]}}
`,
			wantErr: true,
		},
		{
			name: "numeric without bound",
			yaml: `
questions:
  - {key: a, text: "A?", category: runtime, predicate: {kind: numeric, field: runtime}}
`,
			wantErr: true,
		},
		{
			name: "contradiction with unknown key",
			yaml: `
questions:
  - {key: a, text: "A?", category: genre, predicate: {kind: genre, terms: [Action]}}
contradictions:
  - [a, zzz]
`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ParseRegistry([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
