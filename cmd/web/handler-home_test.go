package main

import (
	"context"
	"github.com/stretchr/testify/require"
	"net/http"
	"strings"
	"testing"
)

func Test_application_home(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := server.Client()

	res, err := client.Get(ctx, "/")
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusOK, res.StatusCode)
	csp := res.Header.Get("Content-Security-Policy")
	require.Contains(t, csp, "script-src 'nonce-")

	doc, err := client.Prepare(ctx)
	require.NoError(t, err)
	require.Equal(t, "Think of a movie", strings.TrimSpace(doc.Find("h1").Text()))
	require.Contains(t, doc.Find("main p").First().Text(), "32 movies")
	require.Equal(t, 1, doc.Find("form[action='/api/games'] button[type=submit]").Length())
	nonce, ok := doc.Find("script").Attr("nonce")
	require.True(t, ok)
	require.Len(t, nonce, 24)

	res, err = client.Get(ctx, "/no-such-page")
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func Test_application_healthy(t *testing.T) {
	server := startTestServer(t)

	res, err := server.Client().Get(context.Background(), "/api/healthy")
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
}
