package logging_test

import (
	"bytes"
	"context"
	"github.com/myrjola/reelguess/internal/logging"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil))).With("source", "test")

	ctx := logging.WithAttrs(context.Background(), logging.GameID("abc"))
	ctx = logging.WithAttrs(ctx, slog.Int("turn", 3))
	logger.InfoContext(ctx, "answered")

	out := buf.String()
	require.Contains(t, out, "game_id=abc")
	require.Contains(t, out, "turn=3")
	require.Contains(t, out, "source=test")
}
