package db

import (
	"context"
	"fmt"

	"github.com/aklujeats/aklujeats/internal/db/memory"
	"github.com/aklujeats/aklujeats/internal/db/mongodb"
	"github.com/aklujeats/aklujeats/internal/db/sqlstore"
	"github.com/aklujeats/aklujeats/internal/logger"
	"github.com/aklujeats/aklujeats/internal/models"
)

// eventDatabase is implemented by event stores that own a connection
type eventDatabase interface {
	EventStore
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
}

// HybridDatabase routes relational operations to the SQL store and order
// events to a separate document store when one is configured
type HybridDatabase struct {
	SQLDatabase
	events eventDatabase
}

// New creates the database for the given configurations. The SQL store is
// opened lazily: an unreachable server or malformed connection string is
// reported by the first operation, not here.
func New(sqlConfig, nosqlConfig *models.Config) (Database, error) {
	var sqlDB interface {
		SQLDatabase
		EventStore
	}

	switch sqlConfig.Provider {
	case "mysql", "postgres", "sqlite3":
		store, err := sqlstore.New(sqlConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQL store: %w", err)
		}
		sqlDB = store
	case "memory":
		sqlDB = memory.New()
	default:
		return nil, fmt.Errorf("unsupported SQL database provider: %s", sqlConfig.Provider)
	}

	if nosqlConfig == nil || nosqlConfig.Provider == "" {
		return sqlDB, nil
	}

	switch nosqlConfig.Provider {
	case "mongodb":
		events, err := mongodb.New(nosqlConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create MongoDB event store: %w", err)
		}
		logger.Info("Order events stored in MongoDB database %s", nosqlConfig.Database)
		return &HybridDatabase{SQLDatabase: sqlDB, events: events}, nil
	default:
		return nil, fmt.Errorf("unsupported NoSQL database provider: %s", nosqlConfig.Provider)
	}
}

// Connect connects both stores
func (h *HybridDatabase) Connect(ctx context.Context) error {
	if err := h.SQLDatabase.Connect(ctx); err != nil {
		return err
	}
	return h.events.Connect(ctx)
}

// Disconnect closes both stores, reporting the first error
func (h *HybridDatabase) Disconnect(ctx context.Context) error {
	sqlErr := h.SQLDatabase.Disconnect(ctx)
	eventsErr := h.events.Disconnect(ctx)
	if sqlErr != nil {
		return sqlErr
	}
	return eventsErr
}

// Ping checks both stores
func (h *HybridDatabase) Ping(ctx context.Context) error {
	if err := h.SQLDatabase.Ping(ctx); err != nil {
		return fmt.Errorf("sql: %w", err)
	}
	if err := h.events.Ping(ctx); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	return nil
}

// AppendOrderEvent writes to the event store
func (h *HybridDatabase) AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	return h.events.AppendOrderEvent(ctx, event)
}

// ListOrderEvents reads from the event store
func (h *HybridDatabase) ListOrderEvents(ctx context.Context, orderID string) ([]*models.OrderEvent, error) {
	return h.events.ListOrderEvents(ctx, orderID)
}
