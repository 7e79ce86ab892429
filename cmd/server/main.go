package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/tweet-media-relay/internal/di"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/config"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/worker"
	httpServer "github.com/reshetovitsme/tweet-media-relay/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/tweet-media-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	logger := slog.New(multiHandler)
	slog.SetDefault(logger)

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Configuration loaded", "config", cfg.String())

	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Get services from DI container
	b := do.MustInvoke[*bot.Bot](injector)
	handler := do.MustInvoke[*telegramHandler.Handler](injector)
	pool := do.MustInvoke[*worker.Pool[telegramHandler.Job]](injector)
	httpServer := do.MustInvoke[*httpServer.Server](injector)

	// Workers outlive the signal so queued messages are finished during shutdown
	pool.Start(context.WithoutCancel(ctx))

	handler.SetDeveloperCommands(ctx, b)

	// Start HTTP server
	go func() {
		if err := httpServer.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			cancel()
		}
	}()

	// Start polling for updates
	go b.Start(ctx)

	slog.Info("Application started", "port", cfg.HTTPPort, "private", cfg.IsBotPrivate, "env", cfg.AppEnv)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}
