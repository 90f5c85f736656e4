package repositories_test

import (
	"context"
	"github.com/myrjola/reelguess/internal/repositories"
	"github.com/myrjola/reelguess/internal/sqlite"
	"github.com/myrjola/reelguess/internal/testhelpers"
	"io"
	"testing"
)

// newTestRepository creates a repository over a fresh in-memory database seeded with the demonstration catalog.
func newTestRepository(t *testing.T) *repositories.MovieRepository {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	logger := testhelpers.NewLogger(io.Discard)

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		cancel()
		t.Fatal(err)
	}

	t.Cleanup(func() {
		cancel()
		if err = db.Close(); err != nil {
			t.Error(err)
		}
	})

	return repositories.NewMovieRepository(db, logger)
}
