package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdugdh24/recapp-backend/internal/config"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/container"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependency injection container
	app, err := container.NewContainer(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("error closing application", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.Start()
	}()

	app.Logger.Info("server started",
		"addr", app.Server.Addr(),
		"env", cfg.Server.Env,
		"storage", cfg.Storage.Type,
	)

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			app.Logger.Error("server error", "error", err)
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("server shutdown error", "error", err)
		return
	}

	app.Logger.Info("server exited properly")
}
