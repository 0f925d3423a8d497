package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

const agentColumns = "id, name, phone, active, created_at, updated_at"

// CreateAgent creates a new delivery agent
func (s *Store) CreateAgent(ctx context.Context, agent *models.DeliveryAgent) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	query := `INSERT INTO delivery_agents (` + agentColumns + `)
		VALUES (:id, :name, :phone, :active, :created_at, :updated_at)`
	if _, err := db.NamedExecContext(ctx, query, agent); err != nil {
		return fmt.Errorf("failed to insert delivery agent: %w", err)
	}
	return nil
}

// GetAgent retrieves a delivery agent by ID
func (s *Store) GetAgent(ctx context.Context, id string) (*models.DeliveryAgent, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var agent models.DeliveryAgent
	query := db.Rebind(`SELECT ` + agentColumns + ` FROM delivery_agents WHERE id = ?`)
	if err := db.GetContext(ctx, &agent, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delivery agent %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get delivery agent: %w", err)
	}
	return &agent, nil
}

// ListAgents lists delivery agents, optionally filtered by active state
func (s *Store) ListAgents(ctx context.Context, active *bool) ([]*models.DeliveryAgent, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var w where
	if active != nil {
		w.add("active = ?", *active)
	}

	agents := []*models.DeliveryAgent{}
	query := db.Rebind(`SELECT ` + agentColumns + ` FROM delivery_agents` + w.String() + ` ORDER BY name`)
	if err := db.SelectContext(ctx, &agents, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list delivery agents: %w", err)
	}
	return agents, nil
}

// UpdateAgent updates a delivery agent
func (s *Store) UpdateAgent(ctx context.Context, agent *models.DeliveryAgent) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	agent.UpdatedAt = s.now()
	query := `UPDATE delivery_agents SET name = :name, phone = :phone, active = :active,
		updated_at = :updated_at WHERE id = :id`
	result, err := db.NamedExecContext(ctx, query, agent)
	if err != nil {
		return fmt.Errorf("failed to update delivery agent: %w", err)
	}
	return expectRow(result, "delivery agent", agent.ID)
}

// CreateAdmin creates a back-office user
func (s *Store) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	admin.CreatedAt = s.now()
	query := `INSERT INTO admins (id, username, password_hash, created_at)
		VALUES (:id, :username, :password_hash, :created_at)`
	if _, err := db.NamedExecContext(ctx, query, admin); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin %s: %w", admin.Username, shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername retrieves a back-office user by username
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var admin models.Admin
	query := db.Rebind(`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`)
	if err := db.GetContext(ctx, &admin, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %s: %w", username, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

// AppendOrderEvent records an order tracking event
func (s *Store) AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	query := `INSERT INTO order_events (id, order_id, status, note, created_at)
		VALUES (:id, :order_id, :status, :note, :created_at)`
	if _, err := db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to insert order event: %w", err)
	}
	return nil
}

// ListOrderEvents returns an order's events oldest first
func (s *Store) ListOrderEvents(ctx context.Context, orderID string) ([]*models.OrderEvent, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	events := []*models.OrderEvent{}
	query := db.Rebind(`SELECT id, order_id, status, note, created_at FROM order_events
		WHERE order_id = ? ORDER BY created_at, id`)
	if err := db.SelectContext(ctx, &events, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list order events: %w", err)
	}
	return events, nil
}
