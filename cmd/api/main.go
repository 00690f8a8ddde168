// Command api serves the lending library over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lending-library/internal/config"
	hhttp "lending-library/internal/handler/http"
	hauth "lending-library/internal/handler/http/auth"
	"lending-library/internal/infra/db"
	"lending-library/internal/infra/storage"
	"lending-library/internal/observability/logging"
	"lending-library/internal/observability/tracing"
	"lending-library/internal/usecase/library"
)

// gaugeInterval is how often catalog size gauges are refreshed.
const gaugeInterval = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := initLogger(cfg.LogLevel)

	shutdownTracing := tracing.NewProvider(cfg.TraceSampleRatio)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	backend := initStore(logger, cfg)
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	lib := library.NewWithStore(backend.Store)
	handler := setupServer(logger, cfg, backend, lib, getVersion())
	runServer(logger, cfg, handler, lib)
}

// initLogger installs a JSON logger at level as the process default.
func initLogger(level string) *slog.Logger {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(level))
	slog.SetDefault(logger)
	return logger
}

func initStore(logger *slog.Logger, cfg *config.Config) *storage.Backend {
	dsn := cfg.DatabaseURL
	if cfg.Store == config.StoreSQLite {
		dsn = cfg.SQLitePath
	}
	backend, err := storage.Open(context.Background(), cfg.Store, dsn, db.ConnectionConfigFromEnv())
	if err != nil {
		logger.Error("failed to open store",
			slog.String("store", cfg.Store),
			slog.Any("error", err))
		os.Exit(1)
	}
	return backend
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}

func setupServer(logger *slog.Logger, cfg *config.Config, backend *storage.Backend, lib *library.Service, version string) http.Handler {
	rc := hhttp.RouterConfig{
		Logger:       logger,
		Health:       &hhttp.HealthHandler{Backend: backend.Name, DB: backend.DB, Version: version},
		Ready:        &hhttp.ReadyHandler{DB: backend.DB},
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	}
	if backend.Breaker != nil {
		rc.Health.Breaker = backend.Breaker
	}

	if cfg.AuthEnabled() {
		rc.Tokens = hauth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		logger.Info("authorization enabled for mutating routes")
	} else {
		logger.Warn("JWT_SECRET not set - mutating routes are open")
	}

	if cfg.RateLimit.RPS > 0 {
		rc.RateLimiter = hhttp.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		logger.Info("rate limiting initialized",
			slog.Float64("rps", cfg.RateLimit.RPS),
			slog.Int("burst", cfg.RateLimit.Burst))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	return hhttp.NewRouter(lib, rc)
}

func runServer(logger *slog.Logger, cfg *config.Config, handler http.Handler, lib *library.Service) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go refreshGauges(ctx, logger, lib)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTP.Addr),
			slog.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// refreshGauges publishes catalog sizes until ctx is cancelled.
func refreshGauges(ctx context.Context, logger *slog.Logger, lib *library.Service) {
	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()
	for {
		if err := lib.RefreshGauges(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("failed to refresh catalog gauges", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
