// Package catalogimport loads movie dumps into the catalog database.
package catalogimport

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/logging"
	"github.com/myrjola/reelguess/internal/models"
	"github.com/myrjola/reelguess/internal/repositories"
	"github.com/myrjola/reelguess/internal/sqlite"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
)

var Group = &cobra.Group{
	ID:    "catalog",
	Title: "Catalog operations",
}

var ErrInvalidMovie = errors.NewSentinel("invalid movie")

func init() {
	Import.Flags().String("sqlite-url", "./reelguess.sqlite3", "SQLite URL of the catalog")
}

var Import = &cobra.Command{
	Use:     "import [file.json]",
	GroupID: "catalog",
	Short:   "Import movies",
	Long: `Imports a JSON array of movies with their genres, keywords, cast, crew, countries and collection.
Movies that already exist are updated and their relations replaced. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sqliteURL, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			return errors.Wrap(err, "sqlite-url flag")
		}
		logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			AddSource:   false,
			Level:       slog.LevelInfo,
			ReplaceAttr: nil,
		})))

		in := cmd.InOrStdin()
		if args[0] != "-" {
			var f *os.File
			if f, err = os.Open(args[0]); err != nil {
				return errors.Wrap(err, "open dump", slog.String("file", args[0]))
			}
			defer func() {
				_ = f.Close()
			}()
			in = f
		}

		ctx := cmd.Context()
		db, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
		if err != nil {
			return errors.Wrap(err, "open db", slog.String("url", sqliteURL))
		}
		defer func() {
			_ = db.Close()
		}()

		repo := repositories.NewMovieRepository(db, logger)
		imported, err := importMovies(ctx, repo, in)
		if err != nil {
			return err
		}
		total, err := repo.CountMovies(ctx)
		if err != nil {
			return errors.Wrap(err, "count movies")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies, the catalog now holds %d.\n", imported, total)
		return nil
	},
}

// importMovies decodes a JSON array of movies from r and stores them. Nothing is stored if any movie is invalid.
func importMovies(ctx context.Context, repo *repositories.MovieRepository, r io.Reader) (int, error) {
	var movies []models.Movie
	if err := json.NewDecoder(r).Decode(&movies); err != nil {
		return 0, errors.Wrap(err, "decode dump")
	}
	for i, m := range movies {
		if m.ID <= 0 || m.Title == "" {
			return 0, errors.Wrap(ErrInvalidMovie, "validate dump",
				slog.Int("index", i), slog.Int64("movie_id", m.ID), slog.String("title", m.Title))
		}
	}
	if err := repo.Import(ctx, movies); err != nil {
		return 0, errors.Wrap(err, "import")
	}
	return len(movies), nil
}
