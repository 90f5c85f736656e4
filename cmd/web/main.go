package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/engine"
	"github.com/myrjola/reelguess/internal/envstruct"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/game"
	"github.com/myrjola/reelguess/internal/logging"
	"github.com/myrjola/reelguess/internal/pprofserver"
	"github.com/myrjola/reelguess/internal/repositories"
	"github.com/myrjola/reelguess/internal/sqlite"
	"golang.org/x/time/rate"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	games          *game.Manager
	movies         *repositories.MovieRepository
	startLimiter   *rate.Limiter
	catalogLimit   int
	metrics        *metrics
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"REELGUESS_ADDR" envDefault:"localhost:4000"`
	// PprofAddr is the address to listen on for pprof. Leave empty to disable pprof.
	PprofAddr string `env:"REELGUESS_PPROF_ADDR" envDefault:""`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"REELGUESS_SQLITE_URL" envDefault:"./reelguess.sqlite3"`
	// CatalogLimit caps the candidate pool of a new game. Zero loads the whole catalog.
	CatalogLimit int `env:"REELGUESS_CATALOG_LIMIT" envDefault:"0"`
	// StartRate is the sustained number of games that may be started per second.
	StartRate float64 `env:"REELGUESS_START_RATE" envDefault:"5"`
	StartBurst int    `env:"REELGUESS_START_BURST" envDefault:"10"`
	// SessionLifetimeHours bounds how long a browser session keeps its games. Games idle for longer are ended.
	SessionLifetimeHours int `env:"REELGUESS_SESSION_LIFETIME_HOURS" envDefault:"12"`
	// SweepIntervalMinutes is how often idle games are looked for.
	SweepIntervalMinutes int `env:"REELGUESS_SWEEP_INTERVAL_MINUTES" envDefault:"10"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err error
		cfg config
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()

	var engineCfg engine.Config
	if engineCfg, err = engine.ConfigFromEnv(lookupEnv); err != nil {
		return errors.Wrap(err, "engine config")
	}
	var registry *engine.Registry
	if registry, err = engine.LoadRegistry(); err != nil {
		return errors.Wrap(err, "load registry")
	}
	var e *engine.Engine
	if e, err = engine.New(engineCfg, registry, logger); err != nil {
		return errors.Wrap(err, "new engine")
	}

	movies := repositories.NewMovieRepository(db, logger)
	store := catalog.NewCache(movies, logger)

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = time.Duration(cfg.SessionLifetimeHours) * time.Hour
	sessionManager.Cookie.Secure = true

	games := game.NewManager(e, store, logger)
	games.StartSweeper(ctx, time.Duration(cfg.SweepIntervalMinutes)*time.Minute, sessionManager.Lifetime)

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		games:          games,
		movies:         movies,
		startLimiter:   rate.NewLimiter(rate.Limit(cfg.StartRate), cfg.StartBurst),
		catalogLimit:   cfg.CatalogLimit,
		metrics:        newMetrics(),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// A missing .env file is fine, the environment may be configured by other means.
	if err := godotenv.Load(); err != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "no .env file loaded", errors.SlogError(err))
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		stop()
		os.Exit(1)
	}
	stop()
}
