package main

import (
	"fmt"
	"github.com/justinas/nosurf"
	"github.com/myrjola/reelguess/internal/contexthelpers"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/logging"
	"github.com/myrjola/reelguess/internal/random"
	"log/slog"
	"net/http"
)

func (app *application) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := random.Letters(24) //nolint:mnd // 24 letters give plenty of entropy.
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "generate csp nonce"))
			return
		}
		r = contexthelpers.SetCSPNonce(r, nonce)

		w.Header().Set("Content-Security-Policy",
			fmt.Sprintf(`script-src 'nonce-%s' 'strict-dynamic' https: http:; object-src 'none'; base-uri 'none';`,
				nonce))
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		ctx := logging.WithAttrs(r.Context(), slog.String("method", method), slog.String("uri", uri))
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request", slog.String("proto", proto))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.New("panic", slog.Any("recovered", err)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCurrentPath(r, r.URL.Path)
		r = contexthelpers.SetCSRFToken(r, nosurf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// noSurf implements CSRF protection using https://github.com/justinas/nosurf
//
// The JSON API expects the token in the X-CSRF-Token header.
func (app *application) noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   true,
	})
	csrfHandler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := nosurf.Reason(r)
		if reason == nil {
			reason = errors.New("csrf check failed")
		}
		app.clientError(w, r, http.StatusForbidden, reason)
	}))

	return csrfHandler
}

// rateLimitStart throttles game creation across all clients.
func (app *application) rateLimitStart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.startLimiter.Allow() {
			app.clientError(w, r, http.StatusTooManyRequests, errors.New("too many games started"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gameContext resolves the {gameID} path value. Games of other browser sessions respond as if they did not exist.
func (app *application) gameContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameID := r.PathValue("gameID")
		if !app.ownsGame(r.Context(), gameID) {
			app.notFound(w, r)
			return
		}
		r = contexthelpers.SetGameID(r, gameID)
		r = r.WithContext(logging.WithAttrs(r.Context(), logging.GameID(gameID)))
		next.ServeHTTP(w, r)
	})
}
