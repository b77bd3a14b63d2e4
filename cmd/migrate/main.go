package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/V4T54L/leadstore/internal/adapter/repository/postgres"
	"github.com/V4T54L/leadstore/internal/pkg/config"
	"github.com/V4T54L/leadstore/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting schema migration")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, postgres.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	log.Info("schema is up to date")
}
