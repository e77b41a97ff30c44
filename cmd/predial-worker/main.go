package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"predial/internal/amqp"
	"predial/internal/config"
	"predial/internal/log"
	"predial/internal/store/postgres"
	"predial/internal/store/sqlite"
	"predial/internal/worker"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
		Handler:   log.NewHandler(cfg.LogFormat, log.ParseLevel(cfg.LogLevel)),
	})
	log.SetDefault(logger)

	logger.Info("Starting predial-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for the sync worker")
		os.Exit(1)
	}

	// Local mirror holding pending rows.
	local, err := sqlite.New(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize local SQLite store",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer local.Close()

	// Remote mirror receiving versioned upserts.
	remote, err := postgres.New(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize remote Postgres store", log.FieldError, err)
		os.Exit(1)
	}
	defer remote.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(local, remote, cfg.SyncBatchSize, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drain anything left pending from a previous run before consuming.
	logger.Info("Performing startup sync check")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err)
		// Keep running; the periodic sweep retries.
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumePropertySync(ctx, func(msg *amqp.PropertySyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
