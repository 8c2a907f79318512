// Package main is the entry point for the NeuroCare web server. It loads
// configuration, connects the local store, wires together all plugins, and
// starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/neurocare/neurocare-web/internal/app"
	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/config"
	"github.com/neurocare/neurocare-web/internal/database"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/plugins/chat"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Configure structured logging based on environment.
	setupLogging(cfg)
	if envErr != nil {
		slog.Debug("no .env file loaded, using process environment", slog.Any("reason", envErr))
	}

	slog.Info("starting NeuroCare",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
	)

	// --- Local Store ---
	// Redis when configured; development may run without it.
	var (
		rdb   *redis.Client
		store localstore.Provider
	)
	if cfg.Redis.URL == "" && cfg.IsDevelopment() {
		slog.Warn("REDIS_URL is empty, browser state is kept in memory and lost on restart")
		store = localstore.NewMemoryProvider()
	} else {
		rdb, err = database.NewRedis(cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to Redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		slog.Info("connected to Redis")
		store = localstore.NewRedisProvider(rdb, cfg.LocalStore.TTL)
	}

	// --- Chat Relay ---
	completer, err := chat.NewArkCompleter(context.Background(), cfg.Chat)
	if err != nil {
		slog.Error("failed to create chat model", slog.Any("error", err))
		os.Exit(1)
	}
	if completer == nil {
		slog.Info("chat relay disabled, POST /api/chat will answer 503")
	}

	// --- Create Application ---
	application := app.New(cfg, app.Deps{
		Redis:     rdb,
		Store:     store,
		Backend:   backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout),
		Completer: completer,
	})

	// Register all routes (public pages, plugins, API).
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	// Listen for interrupt/term signals to drain connections cleanly.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		// Give in-flight requests (including chat turns) time to complete.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout+5*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// setupLogging configures the global slog logger based on the environment.
// Development uses text format for readability. Production uses JSON for
// structured log aggregation. LOG_LEVEL overrides the default level.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			slog.Warn("ignoring invalid LOG_LEVEL", slog.String("value", cfg.LogLevel))
		}
	}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
