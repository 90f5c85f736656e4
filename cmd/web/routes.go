package main

import (
	"github.com/justinas/alice"
	"net/http"
	"time"
)

func (app *application) routes(defaultTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	dynamic := alice.New(app.sessionManager.LoadAndSave, app.noSurf, commonContext)
	games := dynamic.Append(app.gameContext)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", app.metrics.handler())

	mux.Handle("POST /api/games", dynamic.Append(app.rateLimitStart).ThenFunc(app.startGame))
	mux.Handle("GET /api/games/{gameID}", games.ThenFunc(app.showGame))
	mux.Handle("DELETE /api/games/{gameID}", games.ThenFunc(app.endGame))
	mux.Handle("POST /api/games/{gameID}/answer", games.ThenFunc(app.answer))
	mux.Handle("POST /api/games/{gameID}/confirm", games.ThenFunc(app.confirmGuess))
	mux.Handle("POST /api/games/{gameID}/pick", games.ThenFunc(app.pick))
	mux.Handle("POST /api/games/{gameID}/undo", games.ThenFunc(app.undo))

	mux.Handle("/", dynamic.ThenFunc(app.notFound))

	return app.recoverPanic(app.logRequest(app.secureHeaders(timeoutHandler(mux, defaultTimeout))))
}
