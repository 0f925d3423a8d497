package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// AgentService provides business logic for delivery agents
type AgentService struct {
	db  db.Database
	now func() time.Time
}

// NewAgentService creates a new delivery agent service
func NewAgentService(database db.Database) *AgentService {
	return &AgentService{db: database, now: time.Now}
}

// Create registers a delivery agent
func (s *AgentService) Create(ctx context.Context, req *models.CreateAgentRequest) (*models.DeliveryAgent, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", shared.ErrInvalidInput)
	}

	now := s.now().UTC()
	agent := &models.DeliveryAgent{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Active:    req.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.CreateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create delivery agent: %w", err)
	}
	return agent, nil
}

// List returns delivery agents, optionally filtered by active state
func (s *AgentService) List(ctx context.Context, active *bool) ([]*models.DeliveryAgent, error) {
	return s.db.ListAgents(ctx, active)
}

// Update applies the set fields of req to an agent
func (s *AgentService) Update(ctx context.Context, id string, req *models.UpdateAgentRequest) (*models.DeliveryAgent, error) {
	agent, err := s.db.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		agent.Name = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		agent.Phone = phone
	}
	if req.Active != nil {
		agent.Active = *req.Active
	}
	agent.UpdatedAt = s.now().UTC()

	if err := s.db.UpdateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to update delivery agent: %w", err)
	}
	return agent, nil
}
