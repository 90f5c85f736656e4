package main

import (
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/contexthelpers"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/errors"
	"log/slog"
	"net/http"
)

type startRequest struct {
	Languages     []string `json:"languages"`
	MinPopularity float64  `json:"min_popularity"`
}

type answerRequest struct {
	// QuestionKey defaults to the pending question.
	QuestionKey string `json:"question_key"`
	Answer      string `json:"answer"`
}

type confirmRequest struct {
	Accepted bool `json:"accepted"`
}

type pickRequest struct {
	MovieID int64 `json:"movie_id"`
}

func (app *application) startGame(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	started, err := app.games.StartSession(r.Context(), catalog.Filter{
		Limit:         app.catalogLimit,
		MinPopularity: req.MinPopularity,
		Languages:     req.Languages,
	})
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.addSessionGame(r.Context(), started.ID)
	app.metrics.gamesStarted.Inc()
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "game started",
		slog.String("game_id", started.ID), slog.Int("remaining", started.Remaining))
	app.writeJSON(w, r, http.StatusCreated, started)
}

func (app *application) showGame(w http.ResponseWriter, r *http.Request) {
	out, err := app.games.Current(r.Context(), contexthelpers.GameID(r.Context()))
	app.respond(w, r, out, err)
}

func (app *application) endGame(w http.ResponseWriter, r *http.Request) {
	gameID := contexthelpers.GameID(r.Context())
	app.games.End(gameID)
	app.removeSessionGame(r.Context(), gameID)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	out, err := app.games.Answer(r.Context(), contexthelpers.GameID(r.Context()), req.QuestionKey, req.Answer)
	if err == nil {
		a, _ := engine.ParseAnswer(req.Answer)
		app.metrics.answers.WithLabelValues(a.String()).Inc()
	}
	app.respondTurn(w, r, out, err)
}

func (app *application) confirmGuess(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	out, err := app.games.ConfirmGuess(r.Context(), contexthelpers.GameID(r.Context()), req.Accepted)
	if err == nil {
		outcome := "rejected"
		if req.Accepted {
			outcome = "accepted"
		}
		app.metrics.guesses.WithLabelValues(outcome).Inc()
	}
	app.respondTurn(w, r, out, err)
}

func (app *application) pick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.MovieID == 0 {
		app.clientError(w, r, http.StatusBadRequest, errors.New("movie_id is required"))
		return
	}
	out, err := app.games.Pick(r.Context(), contexthelpers.GameID(r.Context()), req.MovieID)
	app.respondTurn(w, r, out, err)
}

func (app *application) undo(w http.ResponseWriter, r *http.Request) {
	out, err := app.games.Undo(r.Context(), contexthelpers.GameID(r.Context()))
	app.respond(w, r, out, err)
}

func (app *application) respond(w http.ResponseWriter, r *http.Request, out engine.Outcome, err error) {
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

// respondTurn is respond for steps that may end the game.
func (app *application) respondTurn(w http.ResponseWriter, r *http.Request, out engine.Outcome, err error) {
	if err == nil && out.Phase.Terminal() {
		app.metrics.gamesFinished.WithLabelValues(string(out.Phase)).Inc()
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "game finished",
			slog.String("phase", string(out.Phase)), slog.Int("turn", out.Turn))
	}
	app.respond(w, r, out, err)
}
