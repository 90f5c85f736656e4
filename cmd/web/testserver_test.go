package main

import (
	"context"
	"github.com/myrjola/reelguess/internal/e2etest"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "REELGUESS_ADDR":
		return "localhost:0", true
	case "REELGUESS_SQLITE_URL":
		return ":memory:", true
	default:
		return "", false
	}
}

// startTestServer runs the application on a random port until the test ends.
func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return server
}

// newClient returns a client of server with its own browser session.
func newClient(t *testing.T, server *e2etest.Server) *e2etest.Client {
	t.Helper()
	client, err := e2etest.NewClient(server.URL())
	require.NoError(t, err)
	_, err = client.Prepare(context.Background())
	require.NoError(t, err)
	return client
}
