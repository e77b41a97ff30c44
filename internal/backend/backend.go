// Package backend assembles a property store and an optional sync publisher
// from configuration. The memory backend serves development and tests, the
// sqlite backend is the local-first production setup, and the postgres
// backend talks to the remote mirror directly.
package backend

import (
	"fmt"

	"predial/internal/amqp"
	"predial/internal/config"
	"predial/internal/log"
	"predial/internal/services"
	"predial/internal/store"
	"predial/internal/store/memory"
	"predial/internal/store/postgres"
	"predial/internal/store/sqlite"
)

// Result bundles what a backend provides. Publisher is nil when no AMQP
// broker is configured; Cleanup is nil when nothing needs closing.
type Result struct {
	Store     store.Store
	Publisher services.SyncPublisher
	Cleanup   func() error
}

// Create builds the backend selected by cfg.DataBackend.
func Create(cfg *config.Config, logger *log.Logger) (*Result, error) {
	logger = logger.WithComponent(log.ComponentBackend)

	switch cfg.DataBackend {
	case "memory":
		return createMemory(cfg, logger)
	case "sqlite":
		return createSQLite(cfg, logger)
	case "postgres":
		return createPostgres(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}

func createMemory(cfg *config.Config, logger *log.Logger) (*Result, error) {
	st, err := memory.NewFromDirectory(cfg.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("initialize memory store: %w", err)
	}
	logger.Info("Initialized memory backend", "data_directory", cfg.DataDirectory)
	return &Result{Store: st}, nil
}

func createSQLite(cfg *config.Config, logger *log.Logger) (*Result, error) {
	st, err := sqlite.New(cfg.SQLiteDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	// AMQP is optional: without it saves still land locally and the worker's
	// periodic sweep picks them up.
	var publisher services.SyncPublisher
	cleanup := st.Close
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync notifications",
				log.FieldError, err)
		} else {
			publisher = client
			cleanup = func() error {
				if err := client.Close(); err != nil {
					logger.Warn("AMQP close failed", log.FieldError, err)
				}
				return st.Close()
			}
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{Store: st, Publisher: publisher, Cleanup: cleanup}, nil
}

func createPostgres(cfg *config.Config, logger *log.Logger) (*Result, error) {
	st, err := postgres.New(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres store: %w", err)
	}
	logger.Info("Initialized Postgres backend")
	return &Result{Store: st, Cleanup: st.Close}, nil
}
