package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// RecentOrdersLimit is how many orders the dashboard shows
const RecentOrdersLimit = 10

// DashboardService aggregates figures for the admin dashboard
type DashboardService struct {
	db  db.Database
	now func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(database db.Database) *DashboardService {
	return &DashboardService{db: database, now: time.Now}
}

// GetOverview returns catalog, agent and order counts plus the latest orders
func (s *DashboardService) GetOverview(ctx context.Context) (*models.DashboardOverview, error) {
	restaurants, err := s.db.ListRestaurants(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurants: %w", err)
	}

	available := true
	items, err := s.db.ListMenuItems(ctx, shared.MenuFilter{Available: &available})
	if err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}

	active := true
	agents, err := s.db.ListAgents(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery agents: %w", err)
	}

	byStatus, err := s.db.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	recent, err := s.db.ListOrders(ctx, shared.OrderFilter{Limit: RecentOrdersLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}

	// Count open restaurants
	open := 0
	for _, restaurant := range restaurants {
		if restaurant.Open {
			open++
		}
	}

	return &models.DashboardOverview{
		Restaurants:     len(restaurants),
		OpenRestaurants: open,
		AvailableItems:  len(items),
		ActiveAgents:    len(agents),
		OrdersByStatus:  byStatus,
		RecentOrders:    recent,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// AgentWorkload is the number of in-flight orders held by an agent
type AgentWorkload struct {
	AgentID  string `json:"agent_id"`
	Name     string `json:"name"`
	InFlight int    `json:"in_flight"`
}

// GetAgentWorkloads returns active agents ranked by in-flight orders, busiest first
func (s *DashboardService) GetAgentWorkloads(ctx context.Context) ([]AgentWorkload, error) {
	active := true
	agents, err := s.db.ListAgents(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery agents: %w", err)
	}

	loads, err := s.db.AgentLoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent loads: %w", err)
	}

	workloads := make([]AgentWorkload, 0, len(agents))
	for _, agent := range agents {
		workloads = append(workloads, AgentWorkload{
			AgentID:  agent.ID,
			Name:     agent.Name,
			InFlight: loads[agent.ID],
		})
	}

	// Sort by load, then name
	sort.SliceStable(workloads, func(i, j int) bool {
		if workloads[i].InFlight != workloads[j].InFlight {
			return workloads[i].InFlight > workloads[j].InFlight
		}
		return workloads[i].Name < workloads[j].Name
	})

	return workloads, nil
}
