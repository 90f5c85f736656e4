// Package play runs a game in the terminal.
package play

import (
	"bufio"
	"context"
	"fmt"
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/logging"
	"github.com/myrjola/reelguess/internal/random"
	"github.com/myrjola/reelguess/internal/repositories"
	"github.com/myrjola/reelguess/internal/sqlite"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var Group = &cobra.Group{
	ID:    "game",
	Title: "Game",
}

var flags struct {
	sqliteURL     string
	limit         int
	languages     []string
	minPopularity float64
	maxStrikes    int
	verbose       bool
}

func init() {
	f := Play.Flags()
	f.StringVar(&flags.sqliteURL, "sqlite-url", "./reelguess.sqlite3", "SQLite URL of the catalog")
	f.IntVar(&flags.limit, "limit", 0, "cap the candidate pool to the most popular movies, 0 for no cap")
	f.StringSliceVar(&flags.languages, "language", nil, "only play with movies in these ISO 639-1 languages")
	f.Float64Var(&flags.minPopularity, "min-popularity", 0, "only play with movies at least this popular")
	f.IntVar(&flags.maxStrikes, "max-strikes", 0, "strikes that eliminate a candidate, 0 keeps the configured value")
	f.BoolVar(&flags.verbose, "verbose", false, "log engine decisions to stderr")
}

var Play = &cobra.Command{
	Use:     "play",
	GroupID: "game",
	Short:   "Play a game in the terminal",
	Long: `Think of a movie and answer the questions with y (yes), n (no), ? (don't know),
py (probably) or pn (probably not). Type u to undo the last step and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		level := slog.LevelWarn
		if flags.verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			AddSource:   false,
			Level:       level,
			ReplaceAttr: nil,
		})))
		ctx := cmd.Context()

		db, err := sqlite.NewDatabase(ctx, flags.sqliteURL, logger)
		if err != nil {
			return errors.Wrap(err, "open db", slog.String("url", flags.sqliteURL))
		}
		defer func() {
			_ = db.Close()
		}()

		cfg, err := engine.ConfigFromEnv(os.LookupEnv)
		if err != nil {
			return errors.Wrap(err, "engine config")
		}
		if flags.maxStrikes > 0 {
			cfg.MaxStrikes = flags.maxStrikes
		}
		registry, err := engine.LoadRegistry()
		if err != nil {
			return errors.Wrap(err, "load registry")
		}
		e, err := engine.New(cfg, registry, logger)
		if err != nil {
			return errors.Wrap(err, "new engine")
		}

		store := catalog.NewCache(repositories.NewMovieRepository(db, logger), logger)
		items, err := store.ListCandidates(ctx, catalog.Filter{
			Limit:         flags.limit,
			MinPopularity: flags.minPopularity,
			Languages:     flags.languages,
		})
		if err != nil {
			return errors.Wrap(err, "list candidates")
		}
		seed, err := random.Seed()
		if err != nil {
			return errors.Wrap(err, "seed")
		}
		session, out, err := e.Start(ctx, store, items, seed)
		if err != nil {
			return errors.Wrap(err, "start game")
		}
		return loop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, out)
	},
}

// loop plays session until it ends, the input runs out or the player quits.
func loop(ctx context.Context, in io.Reader, w io.Writer, session *engine.Session, out engine.Outcome) error {
	scanner := bufio.NewScanner(in)
	for {
		if out.Phase.Terminal() {
			printEnd(w, out)
			return nil
		}
		prompt(w, out)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(w)
			return errors.Wrap(scanner.Err(), "read answer")
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		var err error
		switch {
		case input == "q":
			_, _ = fmt.Fprintln(w, "Bye!")
			return nil
		case input == "u":
			out = session.Undo(ctx)
			if !out.Undone {
				_, _ = fmt.Fprintln(w, "Nothing to undo.")
			}
			continue
		case out.Phase == engine.PhaseQuestion:
			var a engine.Answer
			if a, err = engine.ParseAnswer(input); err == nil {
				out, err = session.Answer(ctx, "", a)
			}
		default:
			out, err = settleGuess(ctx, session, out, input)
		}
		if err != nil {
			_, _ = fmt.Fprintf(w, "Sorry, %q does not work here: %v\n", input, err)
		}
	}
}

func settleGuess(ctx context.Context, session *engine.Session, out engine.Outcome, input string) (engine.Outcome, error) {
	switch input {
	case "y", "yes":
		return session.ConfirmGuess(ctx, true) //nolint:wrapcheck // printed as is.
	case "n", "no":
		return session.ConfirmGuess(ctx, false) //nolint:wrapcheck // printed as is.
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(out.Shortlist) {
		return out, errors.New("answer y, n or the number of a listed movie")
	}
	return session.Pick(ctx, out.Shortlist[n-1].ID) //nolint:wrapcheck // printed as is.
}

func prompt(w io.Writer, out engine.Outcome) {
	switch out.Phase {
	case engine.PhaseQuestion:
		_, _ = fmt.Fprintf(w, "Q%d (%d left): %s [y/n/?/py/pn/u/q] ", out.Turn+1, out.Remaining, out.Question.Text)
	case engine.PhaseGuess:
		if len(out.Shortlist) > 0 {
			_, _ = fmt.Fprintln(w, "Still in the running:")
			printShortlist(w, out.Shortlist)
		}
		_, _ = fmt.Fprintf(w, "Is it %s? [y/n/u/q or a number] ", describe(*out.Guess))
	case engine.PhaseFound, engine.PhaseExhausted:
	}
}

func printEnd(w io.Writer, out engine.Outcome) {
	if out.Phase == engine.PhaseFound {
		_, _ = fmt.Fprintf(w, "Got it: %s after %d questions.\n", describe(*out.Result), out.Turn)
		return
	}
	_, _ = fmt.Fprintln(w, "I give up, no movie in the catalog matches your answers.")
}

func printShortlist(w io.Writer, shortlist []engine.Candidate) {
	for i, c := range shortlist {
		_, _ = fmt.Fprintf(w, "  %d) %s\n", i+1, describe(c))
	}
}

func describe(c engine.Candidate) string {
	if c.Year == 0 {
		return c.Title
	}
	return fmt.Sprintf("%s (%d)", c.Title, c.Year)
}
