package backend

import (
	"context"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/ledger"
	"khata/internal/services"
	"khata/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend wires the in-memory store, durable storage, and the
// record publisher for the configured backend. The store is always the
// read model; the backend type only decides what survives a restart.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; a broker outage must not keep the server down.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without record stream", "error", err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	svc := services.NewLedgerService(ledger.New(), repo, publisher)
	if err := svc.Load(ctx, repo); err != nil {
		_ = repo.Close()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		return nil, fmt.Errorf("load ledger from storage: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Service: svc,
		Cleanup: func() error {
			if amqpClient != nil {
				_ = amqpClient.Close()
			}
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(Config) (*Result, error) {
	svc := services.NewLedgerService(ledger.New(), nil, nil)

	f.logger.Info("Initialized memory backend")

	return &Result{
		Service: svc,
		Cleanup: nil,
	}, nil
}
