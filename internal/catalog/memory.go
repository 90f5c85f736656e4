package catalog

import (
	"cmp"
	"context"
	"github.com/myrjola/reelguess/internal/models"
	"slices"
)

// Memory is a Store over a fixed slice of movies.
type Memory struct {
	movies map[int64]models.Movie
	items  []models.Item
	genres map[int64]string
}

// NewMemory indexes movies. Item.GenreIDs and the genre table are derived from Movie.Genres.
func NewMemory(movies []models.Movie) *Memory {
	m := &Memory{
		movies: make(map[int64]models.Movie, len(movies)),
		genres: make(map[int64]string),
	}
	for _, movie := range movies {
		item := movie.Item
		item.GenreIDs = nil
		for _, g := range movie.Genres {
			item.GenreIDs = append(item.GenreIDs, g.ID)
			m.genres[g.ID] = g.Name
		}
		if item.Year == 0 {
			item.Year = models.YearFromDate(item.ReleaseDate)
		}
		movie.Item = item
		m.movies[item.ID] = movie
		m.items = append(m.items, item)
	}
	slices.SortStableFunc(m.items, func(a, b models.Item) int {
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return m
}

func (m *Memory) ListCandidates(_ context.Context, f Filter) ([]models.Item, error) {
	var out []models.Item
	for _, item := range m.items {
		if item.Popularity < f.MinPopularity {
			continue
		}
		if len(f.Languages) > 0 && !slices.Contains(f.Languages, item.Language) {
			continue
		}
		out = append(out, item)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) EnrichedDetail(_ context.Context, id int64) (models.Detail, error) {
	movie, ok := m.movies[id]
	if !ok {
		return models.Detail{}, nil
	}
	return movie.Detail(), nil
}

func (m *Memory) GenreNames(_ context.Context) (map[int64]string, error) {
	return m.genres, nil
}
