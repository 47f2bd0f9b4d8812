package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rupeelink/rupeelink/internal/admin"
	"github.com/rupeelink/rupeelink/internal/config"
	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/infra"
	"github.com/rupeelink/rupeelink/internal/ledger"
	"github.com/rupeelink/rupeelink/internal/logging"
	"github.com/rupeelink/rupeelink/internal/notification"
	"github.com/rupeelink/rupeelink/internal/server"
)

const alertQueueSize = 64

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Warn("no DATABASE_URL set, using in-memory ledger store")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("no REDIS_URL set, idempotency and rate limits disabled")
	}

	var store ledger.Store
	if db != nil {
		pg := ledger.NewPostgresStore(db, cfg.StoreTimeout)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("run migrations", "error", err)
			os.Exit(1)
		}
		store = pg
	} else {
		store = ledger.NewMemory()
	}

	registry, err := currency.NewRegistry(config.ReferenceCurrency, cfg.Rates)
	if err != nil {
		logger.Error("build currency registry", "error", err)
		os.Exit(1)
	}

	dispatcher := notification.NewDispatcher(notification.NewLoggerNotifier(logger), logger, alertQueueSize)
	go dispatcher.Run(ctx)

	reporter := admin.NewReporter(admin.NewService(store, registry), logger, cfg.ReportInterval)
	go reporter.Run(ctx)

	srv, err := server.New(cfg, store, db, cache, dispatcher, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	cancel()
	logger.Info("server exited cleanly")
}
