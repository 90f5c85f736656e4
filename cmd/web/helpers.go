package main

import (
	"encoding/json"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/game"
	"log/slog"
	"net/http"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, errors.New("not found"))
}

// gameError maps the engine and game sentinels to client errors and anything else to a server error.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownSession), errors.Is(err, engine.ErrEmptyCatalog):
		app.clientError(w, r, http.StatusNotFound, err)
	case errors.Is(err, engine.ErrInvalidAnswer),
		errors.Is(err, engine.ErrUnknownQuestion),
		errors.Is(err, engine.ErrUnknownCandidate):
		app.clientError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, engine.ErrNoPendingGuess),
		errors.Is(err, engine.ErrGuessPending),
		errors.Is(err, engine.ErrSessionFinished):
		app.clientError(w, r, http.StatusConflict, err)
	default:
		app.serverError(w, r, err)
	}
}

// readJSON decodes the request body into v. An empty body leaves v untouched.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)) //nolint:mnd // 64 KiB is plenty for a turn.
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode json body")
	}
	return nil
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "encode json body"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
