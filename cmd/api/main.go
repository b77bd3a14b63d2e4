package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/leadstore/internal/adapter/api"
	"github.com/V4T54L/leadstore/internal/adapter/api/handler"
	"github.com/V4T54L/leadstore/internal/adapter/metrics"
	"github.com/V4T54L/leadstore/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/leadstore/internal/adapter/repository/redis"
	"github.com/V4T54L/leadstore/internal/domain"
	"github.com/V4T54L/leadstore/internal/pkg/config"
	"github.com/V4T54L/leadstore/internal/pkg/logger"
	"github.com/V4T54L/leadstore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Start Admin and Metrics Server ---
	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: api.NewAdminRouter(prometheus.DefaultGatherer),
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	db, err := postgres.Open(ctx, postgres.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to postgres", "max_open_conns", cfg.DBMaxOpenConns)

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Optional Lead Cache ---
	var leadCache domain.LeadCache
	if cfg.CacheEnabled() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, lead cache disabled", "error", err)
		} else {
			leadCache = redisrepo.NewLeadCache(redisClient, logger, cfg.LeadCacheTTL, m)
			logger.Info("lead cache enabled", "ttl", cfg.LeadCacheTTL)
		}
	}

	// --- Initialize Repositories and Use Cases ---
	leadRepo := postgres.NewLeadRepository(db, logger, cfg.DBQueryTimeout)
	noteRepo := postgres.NewNoteRepository(db, logger, cfg.DBQueryTimeout)
	leadUseCase := usecase.NewLeadUseCase(leadRepo, noteRepo, leadCache, logger)

	// --- Initialize API Server ---
	router := api.NewRouter(logger, m,
		handler.NewLeadHandler(leadUseCase, logger, cfg.MaxBodyBytes),
		handler.NewHealthHandler(db, logger, cfg.DBQueryTimeout),
	)
	apiServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
