package main

import (
	"context"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/repositories"
	"github.com/myrjola/reelguess/internal/sqlite"
	"github.com/myrjola/reelguess/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("REELGUESS_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "REELGUESS_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// Count the movies through the repository as a simple smoke test of the synchronized schema.
	count, err := repositories.NewMovieRepository(db, logger).CountMovies(ctx)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching movie count", errors.SlogError(err))
		os.Exit(1)
	}
	if count == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no movies found, something is likely wrong")
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "movie count", slog.Int("count", count))
	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
