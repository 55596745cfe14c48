package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gdugdh24/recapp-backend/internal/config"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/database"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging, os.Stdout)

	if cfg.Storage.Type != config.StorageTypePostgres {
		log.Info("storage is not postgres, nothing to migrate", "storage", cfg.Storage.Type)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if len(applied) == 0 {
		log.Info("schema is up to date")
		return
	}
	log.Info("migrations applied", "versions", applied)
}
