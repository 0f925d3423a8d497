package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/logger"
	"github.com/aklujeats/aklujeats/internal/metrics"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// MaxLineQuantity caps the quantity of a single menu item in one order
const MaxLineQuantity = 50

// OrderService provides business logic for placing and fulfilling orders
type OrderService struct {
	db  db.Database
	now func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(database db.Database) *OrderService {
	return &OrderService{db: database, now: time.Now}
}

// PlaceOrder validates the request against the live menu, snapshots item
// names and prices, and stores the order as placed with payment pending.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	restaurant, err := s.db.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.Open {
		return nil, fmt.Errorf("%w: restaurant %s is closed", shared.ErrConflict, restaurant.Name)
	}

	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		RestaurantID:    restaurant.ID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		Status:          models.OrderPlaced,
	}

	for _, line := range lines {
		item, err := s.db.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, fmt.Errorf("%w: menu item %s does not exist", shared.ErrInvalidInput, line.MenuItemID)
			}
			return nil, fmt.Errorf("failed to get menu item: %w", err)
		}
		if item.RestaurantID != restaurant.ID {
			return nil, fmt.Errorf("%w: menu item %s is not served by %s", shared.ErrInvalidInput, item.Name, restaurant.Name)
		}
		if !item.Available {
			return nil, fmt.Errorf("%w: %s is currently unavailable", shared.ErrConflict, item.Name)
		}

		order.Items = append(order.Items, models.OrderItem{
			ID:             uuid.New().String(),
			OrderID:        order.ID,
			MenuItemID:     item.ID,
			Name:           item.Name,
			UnitPricePaise: item.PricePaise,
			Quantity:       line.Quantity,
		})
		order.TotalPaise += item.PricePaise * int64(line.Quantity)
	}

	if err := s.db.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.RecordOrderPlaced(string(order.PaymentMethod))
	s.appendEvent(ctx, order.ID, models.OrderPlaced, "")
	logger.Info("Order %s placed at %s (%d paise)", order.ID, restaurant.Name, order.TotalPaise)

	return order, nil
}

func validatePlaceOrder(req *models.PlaceOrderRequest) error {
	switch {
	case strings.TrimSpace(req.RestaurantID) == "":
		return fmt.Errorf("%w: restaurant_id is required", shared.ErrInvalidInput)
	case strings.TrimSpace(req.CustomerName) == "":
		return fmt.Errorf("%w: customer_name is required", shared.ErrInvalidInput)
	case strings.TrimSpace(req.CustomerPhone) == "":
		return fmt.Errorf("%w: customer_phone is required", shared.ErrInvalidInput)
	case strings.TrimSpace(req.DeliveryAddress) == "":
		return fmt.Errorf("%w: delivery_address is required", shared.ErrInvalidInput)
	case !req.PaymentMethod.Valid():
		return fmt.Errorf("%w: unsupported payment method %q", shared.ErrInvalidInput, req.PaymentMethod)
	case len(req.Items) == 0:
		return fmt.Errorf("%w: an order needs at least one item", shared.ErrInvalidInput)
	}
	return nil
}

// mergeLines folds repeated menu items into one line, keeping first-seen order
func mergeLines(items []models.OrderLineRequest) ([]models.OrderLineRequest, error) {
	index := make(map[string]int, len(items))
	var lines []models.OrderLineRequest

	for _, item := range items {
		if item.MenuItemID == "" {
			return nil, fmt.Errorf("%w: menu_item_id is required", shared.ErrInvalidInput)
		}
		if item.Quantity < 1 || item.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity must be between 1 and %d", shared.ErrInvalidInput, MaxLineQuantity)
		}
		if i, ok := index[item.MenuItemID]; ok {
			lines[i].Quantity += item.Quantity
			if lines[i].Quantity > MaxLineQuantity {
				return nil, fmt.Errorf("%w: quantity must be between 1 and %d", shared.ErrInvalidInput, MaxLineQuantity)
			}
			continue
		}
		index[item.MenuItemID] = len(lines)
		lines = append(lines, item)
	}
	return lines, nil
}

// Get returns an order with its items
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.db.GetOrder(ctx, id)
}

// List returns one page of orders matching filter and the total match count
func (s *OrderService) List(ctx context.Context, filter shared.OrderFilter, page, limit int) ([]*models.Order, int, error) {
	total, err := s.db.CountOrders(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	orders, err := s.db.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// Transition moves an order to status to. Online payments settle on
// acceptance, cash on delivery, and cancelling a settled order refunds it.
func (s *OrderService) Transition(ctx context.Context, id string, to models.OrderStatus, note string) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", shared.ErrInvalidInput, to)
	}

	order, err := s.db.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", shared.ErrConflict, from, to)
	}
	if to == models.OrderOutForDelivery && order.AgentID == "" {
		return nil, fmt.Errorf("%w: order has no delivery agent", shared.ErrConflict)
	}

	switch {
	case to == models.OrderAccepted && order.PaymentMethod != models.PaymentCash:
		order.PaymentStatus = models.PaymentPaid
	case to == models.OrderDelivered && order.PaymentMethod == models.PaymentCash:
		order.PaymentStatus = models.PaymentPaid
	case to == models.OrderCancelled && order.PaymentStatus == models.PaymentPaid:
		order.PaymentStatus = models.PaymentRefunded
	}

	order.Status = to
	order.UpdatedAt = s.now().UTC()
	if err := s.db.UpdateOrder(ctx, order, from); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	metrics.RecordOrderTransition(string(to))
	s.appendEvent(ctx, order.ID, to, note)
	logger.Debug("Order %s moved from %s to %s", order.ID, from, to)

	return order, nil
}

// AssignAgent hands an accepted or preparing order to a delivery agent. An
// empty agentID picks the active agent with the fewest in-flight orders.
func (s *OrderService) AssignAgent(ctx context.Context, id, agentID string) (*models.Order, error) {
	order, err := s.db.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderAccepted && order.Status != models.OrderPreparing {
		return nil, fmt.Errorf("%w: cannot assign an agent to a %s order", shared.ErrConflict, order.Status)
	}

	var agent *models.DeliveryAgent
	if agentID == "" {
		agent, err = s.leastLoadedAgent(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		agent, err = s.db.GetAgent(ctx, agentID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, fmt.Errorf("%w: delivery agent %s does not exist", shared.ErrInvalidInput, agentID)
			}
			return nil, fmt.Errorf("failed to get delivery agent: %w", err)
		}
		if !agent.Active {
			return nil, fmt.Errorf("%w: delivery agent %s is inactive", shared.ErrConflict, agent.Name)
		}
	}

	order.AgentID = agent.ID
	order.UpdatedAt = s.now().UTC()
	if err := s.db.UpdateOrder(ctx, order, order.Status); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.appendEvent(ctx, order.ID, order.Status, "assigned to "+agent.Name)
	return order, nil
}

func (s *OrderService) leastLoadedAgent(ctx context.Context) (*models.DeliveryAgent, error) {
	active := true
	agents, err := s.db.ListAgents(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery agents: %w", err)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: no active delivery agents", shared.ErrConflict)
	}

	loads, err := s.db.AgentLoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent loads: %w", err)
	}

	// agents are sorted by name, so the first minimum wins ties
	best := agents[0]
	for _, agent := range agents[1:] {
		if loads[agent.ID] < loads[best.ID] {
			best = agent
		}
	}
	return best, nil
}

// SweepStale cancels placed orders older than olderThan and returns how many
// were cancelled. Orders accepted concurrently are skipped.
func (s *OrderService) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	stale, err := s.db.ListOrders(ctx, shared.OrderFilter{
		Status:       string(models.OrderPlaced),
		PlacedBefore: &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list stale orders: %w", err)
	}

	cancelled := 0
	note := fmt.Sprintf("not accepted within %s", olderThan)
	for _, order := range stale {
		if _, err := s.Transition(ctx, order.ID, models.OrderCancelled, note); err != nil {
			if shared.IsConflict(err) {
				continue
			}
			return cancelled, err
		}
		cancelled++
	}

	if cancelled > 0 {
		metrics.RecordStaleOrdersCancelled(cancelled)
		logger.Info("Cancelled %d stale orders", cancelled)
	}
	return cancelled, nil
}

// Events returns the tracking timeline of an order, oldest first
func (s *OrderService) Events(ctx context.Context, id string) ([]*models.OrderEvent, error) {
	if _, err := s.db.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.db.ListOrderEvents(ctx, id)
}

// appendEvent records a timeline entry. The order change is already stored,
// so a failure here is logged rather than returned.
func (s *OrderService) appendEvent(ctx context.Context, orderID string, status models.OrderStatus, note string) {
	event := &models.OrderEvent{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.AppendOrderEvent(ctx, event); err != nil {
		logger.Error("Failed to record %s event for order %s: %v", status, orderID, err)
	}
}
