package pprofserver

import (
	"context"
	"github.com/myrjola/reelguess/internal/errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServer(addr string) *http.Server {
	mux := http.NewServeMux()
	Handle(mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}

// Launch a pprof server at addr in the background. Keep addr on a loopback interface so that it's not open to the
// world. The server shuts down when ctx is cancelled.
func Launch(ctx context.Context, addr string, logger *slog.Logger) {
	srv := newServer(addr)
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server failed", errors.SlogError(err))
		}
	}()
}
