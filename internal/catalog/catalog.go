// Package catalog provides access to the movie catalog the engine plays against.
package catalog

import (
	"context"
	"github.com/myrjola/reelguess/internal/models"
)

// Filter narrows the candidate pool loaded at session start.
type Filter struct {
	// Limit caps the number of candidates. Zero means no limit.
	Limit int `json:"limit"`
	// MinPopularity drops candidates below this popularity.
	MinPopularity float64 `json:"min_popularity"`
	// Languages keeps only these original languages when non-empty.
	Languages []string `json:"languages"`
}

// Store is a source of catalog items and their enriched records.
type Store interface {
	// ListCandidates returns the items matching f ordered by popularity descending.
	ListCandidates(ctx context.Context, f Filter) ([]models.Item, error)
	// EnrichedDetail returns the enriched record of id. An unknown id yields a record with Found unset.
	EnrichedDetail(ctx context.Context, id int64) (models.Detail, error)
	// GenreNames maps genre identifiers to names.
	GenreNames(ctx context.Context) (map[int64]string, error)
}
