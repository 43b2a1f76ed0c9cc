package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging"
	natsclient "github.com/abgdnv/inventory/pkg/nats"
)

// SetupStore opens the configured database and returns the store with its close function.
func SetupStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	switch cfg.Driver {
	case config.DriverCassandra:
		session, err := bootstrap.NewCassandraSession(ctx, cfg.Cassandra, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		cs := store.NewCassandraStore(session)
		if cfg.Cassandra.CreateSchema {
			if err := cs.EnsureSchema(ctx); err != nil {
				session.Close()
				return nil, nil, err
			}
		}
		logger.Info("Connected to Cassandra", "hosts", cfg.Cassandra.Hosts, "keyspace", cfg.Cassandra.Keyspace)
		return cs, session.Close, nil
	case config.DriverPostgres:
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Postgres.URL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to the database!")
		return store.NewPgStore(dbPool), dbPool.Close, nil
	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on exit")
		return store.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// SetupPublisher connects to NATS when enabled, otherwise events are dropped.
func SetupPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := natsclient.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := natsclient.EnsureProductStream(ctx, js, cfg.Stream); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", cfg.Url, "stream", cfg.Stream)
	return natsclient.NewNatsPublisher(js), func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}, nil
}
