package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Priya8975/newsletter-delivery-system/internal/api"
	"github.com/Priya8975/newsletter-delivery-system/internal/config"
	"github.com/Priya8975/newsletter-delivery-system/internal/email"
	"github.com/Priya8975/newsletter-delivery-system/internal/engine"
	"github.com/Priya8975/newsletter-delivery-system/internal/store"
	"github.com/Priya8975/newsletter-delivery-system/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Initialize PostgreSQL
	ctx := context.Background()
	pgStore, err := store.NewPostgres(ctx, store.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	if err := pgStore.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	deps := api.Dependencies{
		PostgresPinger: pgStore,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger,
	}

	// Redis is optional; without it newsletters are published unguarded.
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		deps.Redis = redisStore.Client()
		deps.RedisPinger = redisStore
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, publish idempotency guard disabled")
	}

	sender, err := email.New(cfg.Email, logger)
	if err != nil {
		logger.Error("failed to configure email sender", "error", err)
		os.Exit(1)
	}
	logger.Info("email sender configured", "provider", cfg.Email.Provider, "from", cfg.Email.From)

	subscriptions := store.NewSubscriptionStore(pgStore.Pool(), cfg.StoreTimeout)
	deliverer := worker.NewDeliverer(sender, cfg.SendTimeout, logger)

	deps.Subscriptions = engine.NewSubscriptionWorkflow(subscriptions, deliverer, cfg.BaseURL, logger)
	deps.Publisher = engine.NewFanOutEngine(subscriptions, deliverer, cfg.FanOutWorkers, logger)
	deps.Metrics = subscriptions

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		// Publishing waits for every send to finish.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
