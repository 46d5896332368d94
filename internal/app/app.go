// Package app wires the translation service together: storage backend,
// cache, upstream client, domain services, HTTP router and server
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/wergeran/wergeran/internal/cache"
	"github.com/wergeran/wergeran/internal/config"
	"github.com/wergeran/wergeran/internal/http/handlers/translateword"
	"github.com/wergeran/wergeran/internal/lib/jwt"
	"github.com/wergeran/wergeran/internal/lib/sl"
	adminservice "github.com/wergeran/wergeran/internal/services/admin"
	authservice "github.com/wergeran/wergeran/internal/services/auth"
	"github.com/wergeran/wergeran/internal/services/quota"
	subservice "github.com/wergeran/wergeran/internal/services/subscription"
	translateservice "github.com/wergeran/wergeran/internal/services/translate"
	"github.com/wergeran/wergeran/internal/storage"
	"github.com/wergeran/wergeran/internal/storage/memory"
	"github.com/wergeran/wergeran/internal/storage/postgres"
	"github.com/wergeran/wergeran/internal/translator"
)

// App is the assembled service.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *postgres.Storage
}

// New builds the application from its configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var (
		store storage.Store
		db    *postgres.Storage
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := postgres.New(cfg.Storage.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.Migrate(cfg.Storage.MigrationsPath); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		store, db = pg, pg
	case "memory", "":
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	var translationCache cache.Cache
	if cfg.RedisConnection.AddressRedis != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		translationCache = redisCache
	} else {
		logger.Info("redis address not configured, using in-process cache")
		translationCache = cache.NewMemory()
	}

	maker := jwt.NewMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	client := translator.New(cfg.Anthropic)

	subs := subservice.New(logger, store, store, store, store)
	if err := subs.SeedPlans(ctx); err != nil {
		return nil, fmt.Errorf("seed plans: %w", err)
	}

	ledger := quota.NewLedger(logger, store, store)
	translate := translateservice.New(logger, client, translationCache, ledger, subs, store)
	auth := authservice.New(logger, store, maker)
	admin := adminservice.New(logger, store)

	dict, err := translateword.LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		logger.Warn("failed to load dictionary, word lookups go upstream", sl.Err(err))
		dict = translateword.Dictionary{}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:      auth,
		Admin:     admin,
		Subs:      subs,
		Ledger:    ledger,
		Translate: translate,
		Store:     store,
		Maker:     maker,
		Dict:      dict,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.db != nil {
			a.db.Close()
		}
		return err
	}
}
