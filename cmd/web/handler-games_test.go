package main

import (
	"context"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/game"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"testing"
)

func Test_application_gameFlow(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := newClient(t, server)

	var started game.Started
	require.NoError(t, client.Post(ctx, "/api/games", nil, &started))
	require.NotEmpty(t, started.ID)
	require.Equal(t, engine.PhaseQuestion, started.Phase)
	require.NotNil(t, started.Question)
	require.Equal(t, 32, started.Remaining)
	gamePath := "/api/games/" + started.ID

	var current engine.Outcome
	status, err := client.Do(ctx, http.MethodGet, gamePath, nil, &current)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, started.Question.Key, current.Question.Key)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"invalid answer", gamePath + "/answer", answerRequest{Answer: "perhaps"}, http.StatusBadRequest},
		{"unknown question", gamePath + "/answer", answerRequest{QuestionKey: "nope", Answer: "y"}, http.StatusBadRequest},
		{"unknown field", gamePath + "/answer", map[string]string{"reply": "y"}, http.StatusBadRequest},
		{"no pending guess", gamePath + "/confirm", confirmRequest{Accepted: true}, http.StatusConflict},
		{"missing movie", gamePath + "/pick", pickRequest{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err = client.Do(ctx, http.MethodPost, tt.path, tt.body, nil)
			require.NoError(t, err)
			require.Equal(t, tt.status, status)
		})
	}

	var out engine.Outcome
	require.NoError(t, client.Post(ctx, gamePath+"/answer", answerRequest{Answer: "?"}, &out))
	require.Equal(t, 1, out.Turn)

	require.NoError(t, client.Post(ctx, gamePath+"/undo", nil, &out))
	require.True(t, out.Undone)
	require.Equal(t, 0, out.Turn)
	require.Equal(t, started.Question.Key, out.Question.Key)

	status, err = client.Do(ctx, http.MethodDelete, gamePath, nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, status)
	status, err = client.Do(ctx, http.MethodGet, gamePath, nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func Test_application_guessAndMetrics(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := newClient(t, server)

	// Parasite is the only Korean movie in the demonstration catalog.
	var started game.Started
	require.NoError(t, client.Post(ctx, "/api/games", startRequest{Languages: []string{"ko"}}, &started))
	require.Equal(t, engine.PhaseGuess, started.Phase)
	require.Equal(t, int64(496243), started.Guess.ID)
	require.Equal(t, "Parasite", started.Guess.Title)

	var out engine.Outcome
	require.NoError(t, client.Post(ctx, "/api/games/"+started.ID+"/confirm", confirmRequest{Accepted: true}, &out))
	require.Equal(t, engine.PhaseFound, out.Phase)
	require.Equal(t, int64(496243), out.Result.ID)

	status, err := client.Do(ctx, http.MethodPost, "/api/games/"+started.ID+"/answer", answerRequest{Answer: "y"}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, status)

	status, err = client.Do(ctx, http.MethodPost, "/api/games", startRequest{Languages: []string{"xx"}}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)

	res, err := client.Get(ctx, "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	require.Contains(t, string(body), "reelguess_games_started_total 1")
	require.Contains(t, string(body), `reelguess_guesses_total{outcome="accepted"} 1`)
	require.Contains(t, string(body), `reelguess_games_finished_total{phase="found"} 1`)
}

func Test_application_gamesAreBoundToBrowserSession(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	owner := newClient(t, server)
	stranger := newClient(t, server)

	var started game.Started
	require.NoError(t, owner.Post(ctx, "/api/games", nil, &started))

	status, err := stranger.Do(ctx, http.MethodGet, "/api/games/"+started.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
	status, err = stranger.Do(ctx, http.MethodPost, "/api/games/"+started.ID+"/answer", answerRequest{Answer: "y"}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func Test_application_csrf(t *testing.T) {
	server := startTestServer(t)

	// server.Client never loaded the landing page, so it has neither the CSRF cookie nor the token.
	status, err := server.Client().Do(context.Background(), http.MethodPost, "/api/games", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, status)
}
