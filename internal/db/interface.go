package db

import (
	"context"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// Database defines the combined interface for relational data and the order event log
type Database interface {
	SQLDatabase
	EventStore
}

// SQLDatabase defines the interface for relational database operations
// (catalog, orders, delivery agents and admins)
type SQLDatabase interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Restaurant operations
	CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context, open *bool) ([]*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, restaurant *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, id string) error

	// Menu operations
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context, filter shared.MenuFilter) ([]*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error

	// Order operations
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter shared.OrderFilter) ([]*models.Order, error)
	CountOrders(ctx context.Context, filter shared.OrderFilter) (int, error)
	// UpdateOrder persists status, payment and agent fields only if the stored
	// status still equals expected; otherwise it returns shared.ErrConflict.
	UpdateOrder(ctx context.Context, order *models.Order, expected models.OrderStatus) error
	CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error)

	// Delivery agent operations
	CreateAgent(ctx context.Context, agent *models.DeliveryAgent) error
	GetAgent(ctx context.Context, id string) (*models.DeliveryAgent, error)
	ListAgents(ctx context.Context, active *bool) ([]*models.DeliveryAgent, error)
	UpdateAgent(ctx context.Context, agent *models.DeliveryAgent) error
	// AgentLoads returns the number of in-flight orders per agent id
	AgentLoads(ctx context.Context) (map[string]int, error)

	// Admin operations
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// EventStore defines the interface for the order tracking log
type EventStore interface {
	AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error
	ListOrderEvents(ctx context.Context, orderID string) ([]*models.OrderEvent, error)
}
