package main

import (
	"context"
	"github.com/myrjola/reelguess/internal/e2etest"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/game"
	"github.com/myrjola/reelguess/internal/logging"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// maxTurns bounds the scripted game in case the service keeps asking.
const maxTurns = 100

// TestGame plays a game answering "no" until the service guesses or gives up, then undoes the last step and
// ends the game.
func TestGame(ctx context.Context, logger *slog.Logger, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds
	defer cancel()

	if _, err := client.Prepare(ctx); err != nil {
		return errors.Wrap(err, "prepare client")
	}
	var started game.Started
	if err := client.Post(ctx, "/api/games", nil, &started); err != nil {
		return errors.Wrap(err, "start game")
	}
	ctx = logging.WithAttrs(ctx, logging.GameID(started.ID))
	gamePath := "/api/games/" + started.ID

	out := started.Outcome
	for out.Phase == engine.PhaseQuestion {
		if out.Turn >= maxTurns {
			return errors.New("too many questions", slog.Int("turn", out.Turn))
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "question", slog.String("key", out.Question.Key),
			slog.Int("remaining", out.Remaining))
		var next engine.Outcome
		if err := client.Post(ctx, gamePath+"/answer", map[string]string{"answer": "n"}, &next); err != nil {
			return errors.Wrap(err, "answer", slog.Int("turn", out.Turn))
		}
		out = next
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "game settled", slog.String("phase", string(out.Phase)),
		slog.Int("turn", out.Turn))

	var undone engine.Outcome
	if err := client.Post(ctx, gamePath+"/undo", nil, &undone); err != nil {
		return errors.Wrap(err, "undo")
	}
	if !undone.Undone {
		return errors.New("undo did not restore a step")
	}

	status, err := client.Do(ctx, http.MethodDelete, gamePath, nil, nil)
	if err != nil {
		return errors.Wrap(err, "end game")
	}
	if status != http.StatusNoContent {
		return errors.New("unexpected status code", slog.Int("status", status))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestGame(ctx, logger, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error playing game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
