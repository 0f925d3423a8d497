package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// Store is an in-memory implementation of the database interfaces. It is safe
// for concurrent use and is intended for tests and local development.
type Store struct {
	mu          sync.RWMutex
	restaurants map[string]models.Restaurant
	menuItems   map[string]models.MenuItem
	orders      map[string]models.Order
	agents      map[string]models.DeliveryAgent
	admins      map[string]models.Admin
	events      map[string][]models.OrderEvent

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		restaurants: make(map[string]models.Restaurant),
		menuItems:   make(map[string]models.MenuItem),
		orders:      make(map[string]models.Order),
		agents:      make(map[string]models.DeliveryAgent),
		admins:      make(map[string]models.Admin),
		events:      make(map[string][]models.OrderEvent),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Connect is a no-op.
func (s *Store) Connect(context.Context) error { return nil }

// Disconnect is a no-op.
func (s *Store) Disconnect(context.Context) error { return nil }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Restaurants -----------------------------------------------------------------

func (s *Store) CreateRestaurant(_ context.Context, restaurant *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.restaurants[restaurant.ID]; exists {
		return fmt.Errorf("restaurant %s: %w", restaurant.ID, shared.ErrAlreadyExists)
	}
	now := s.now()
	restaurant.CreatedAt = now
	restaurant.UpdatedAt = now
	s.restaurants[restaurant.ID] = *restaurant
	return nil
}

func (s *Store) GetRestaurant(_ context.Context, id string) (*models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restaurant, ok := s.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("restaurant %s: %w", id, shared.ErrNotFound)
	}
	return &restaurant, nil
}

func (s *Store) ListRestaurants(_ context.Context, open *bool) ([]*models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Restaurant{}
	for _, restaurant := range s.restaurants {
		if open != nil && restaurant.Open != *open {
			continue
		}
		r := restaurant
		result = append(result, &r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) UpdateRestaurant(_ context.Context, restaurant *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.restaurants[restaurant.ID]
	if !ok {
		return fmt.Errorf("restaurant %s: %w", restaurant.ID, shared.ErrNotFound)
	}
	restaurant.CreatedAt = existing.CreatedAt
	restaurant.UpdatedAt = s.now()
	s.restaurants[restaurant.ID] = *restaurant
	return nil
}

// DeleteRestaurant removes a restaurant together with its menu.
func (s *Store) DeleteRestaurant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[id]; !ok {
		return fmt.Errorf("restaurant %s: %w", id, shared.ErrNotFound)
	}
	delete(s.restaurants, id)
	for itemID, item := range s.menuItems {
		if item.RestaurantID == id {
			delete(s.menuItems, itemID)
		}
	}
	return nil
}

// Menu items ------------------------------------------------------------------

func (s *Store) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.menuItems[item.ID]; exists {
		return fmt.Errorf("menu item %s: %w", item.ID, shared.ErrAlreadyExists)
	}
	if _, ok := s.restaurants[item.RestaurantID]; !ok {
		return fmt.Errorf("restaurant %s: %w", item.RestaurantID, shared.ErrNotFound)
	}
	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.menuItems[item.ID] = *item
	return nil
}

func (s *Store) GetMenuItem(_ context.Context, id string) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menuItems[id]
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", id, shared.ErrNotFound)
	}
	return &item, nil
}

func (s *Store) ListMenuItems(_ context.Context, filter shared.MenuFilter) ([]*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.MenuItem{}
	for _, item := range s.menuItems {
		if filter.RestaurantID != "" && item.RestaurantID != filter.RestaurantID {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Available != nil && item.Available != *filter.Available {
			continue
		}
		i := item
		result = append(result, &i)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *Store) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.menuItems[item.ID]
	if !ok {
		return fmt.Errorf("menu item %s: %w", item.ID, shared.ErrNotFound)
	}
	item.RestaurantID = existing.RestaurantID
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now()
	s.menuItems[item.ID] = *item
	return nil
}

func (s *Store) DeleteMenuItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menuItems[id]; !ok {
		return fmt.Errorf("menu item %s: %w", id, shared.ErrNotFound)
	}
	delete(s.menuItems, id)
	return nil
}

// Orders ----------------------------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("order %s: %w", order.ID, shared.ErrAlreadyExists)
	}
	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	s.orders[order.ID] = stored
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, shared.ErrNotFound)
	}
	order.Items = append([]models.OrderItem{}, order.Items...)
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].Name < order.Items[j].Name })
	return &order, nil
}

func matchOrder(order models.Order, filter shared.OrderFilter) bool {
	if filter.RestaurantID != "" && order.RestaurantID != filter.RestaurantID {
		return false
	}
	if filter.Status != "" && string(order.Status) != filter.Status {
		return false
	}
	if filter.AgentID != "" && order.AgentID != filter.AgentID {
		return false
	}
	if filter.PlacedBefore != nil && !order.CreatedAt.Before(*filter.PlacedBefore) {
		return false
	}
	return true
}

// ListOrders lists orders newest first without their lines.
func (s *Store) ListOrders(_ context.Context, filter shared.OrderFilter) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Order{}
	for _, order := range s.orders {
		if !matchOrder(order, filter) {
			continue
		}
		o := order
		o.Items = nil
		result = append(result, &o)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Limit > 0 {
		if filter.Offset >= len(result) {
			return []*models.Order{}, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[filter.Offset:end]
	}
	return result, nil
}

func (s *Store) CountOrders(_ context.Context, filter shared.OrderFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, order := range s.orders {
		if matchOrder(order, filter) {
			count++
		}
	}
	return count, nil
}

// UpdateOrder applies status, payment and agent changes if the stored status
// still equals expected.
func (s *Store) UpdateOrder(_ context.Context, order *models.Order, expected models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", order.ID, shared.ErrNotFound)
	}
	if stored.Status != expected {
		return fmt.Errorf("order %s is no longer %s: %w", order.ID, expected, shared.ErrConflict)
	}

	order.UpdatedAt = s.now()
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.AgentID = order.AgentID
	stored.UpdatedAt = order.UpdatedAt
	s.orders[order.ID] = stored
	return nil
}

func (s *Store) CountOrdersByStatus(context.Context) (map[models.OrderStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for _, order := range s.orders {
		counts[order.Status]++
	}
	return counts, nil
}

func (s *Store) AgentLoads(context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loads := make(map[string]int)
	for _, order := range s.orders {
		if order.AgentID == "" {
			continue
		}
		for _, status := range models.InFlightStatuses {
			if order.Status == status {
				loads[order.AgentID]++
				break
			}
		}
	}
	return loads, nil
}

// Delivery agents -------------------------------------------------------------

func (s *Store) CreateAgent(_ context.Context, agent *models.DeliveryAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[agent.ID]; exists {
		return fmt.Errorf("delivery agent %s: %w", agent.ID, shared.ErrAlreadyExists)
	}
	now := s.now()
	agent.CreatedAt = now
	agent.UpdatedAt = now
	s.agents[agent.ID] = *agent
	return nil
}

func (s *Store) GetAgent(_ context.Context, id string) (*models.DeliveryAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.agents[id]
	if !ok {
		return nil, fmt.Errorf("delivery agent %s: %w", id, shared.ErrNotFound)
	}
	return &agent, nil
}

func (s *Store) ListAgents(_ context.Context, active *bool) ([]*models.DeliveryAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.DeliveryAgent{}
	for _, agent := range s.agents {
		if active != nil && agent.Active != *active {
			continue
		}
		a := agent
		result = append(result, &a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) UpdateAgent(_ context.Context, agent *models.DeliveryAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.agents[agent.ID]
	if !ok {
		return fmt.Errorf("delivery agent %s: %w", agent.ID, shared.ErrNotFound)
	}
	agent.CreatedAt = existing.CreatedAt
	agent.UpdatedAt = s.now()
	s.agents[agent.ID] = *agent
	return nil
}

// Admins ----------------------------------------------------------------------

func (s *Store) CreateAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.admins {
		if existing.Username == admin.Username {
			return fmt.Errorf("admin %s: %w", admin.Username, shared.ErrAlreadyExists)
		}
	}
	admin.CreatedAt = s.now()
	s.admins[admin.ID] = *admin
	return nil
}

func (s *Store) GetAdminByUsername(_ context.Context, username string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, admin := range s.admins {
		if admin.Username == username {
			a := admin
			return &a, nil
		}
	}
	return nil, fmt.Errorf("admin %s: %w", username, shared.ErrNotFound)
}

// Order events ----------------------------------------------------------------

func (s *Store) AppendOrderEvent(_ context.Context, event *models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.events[event.OrderID] = append(s.events[event.OrderID], *event)
	return nil
}

// ListOrderEvents returns an order's events oldest first.
func (s *Store) ListOrderEvents(_ context.Context, orderID string) ([]*models.OrderEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.OrderEvent, 0, len(s.events[orderID]))
	for _, event := range s.events[orderID] {
		e := event
		result = append(result, &e)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}
