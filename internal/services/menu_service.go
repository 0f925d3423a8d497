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

// MenuService provides business logic for menu items
type MenuService struct {
	db  db.Database
	now func() time.Time
}

// NewMenuService creates a new menu service
func NewMenuService(database db.Database) *MenuService {
	return &MenuService{db: database, now: time.Now}
}

// Create adds a menu item to an existing restaurant
func (s *MenuService) Create(ctx context.Context, req *models.CreateMenuItemRequest) (*models.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if req.PricePaise <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", shared.ErrInvalidInput)
	}

	if _, err := s.db.GetRestaurant(ctx, req.RestaurantID); err != nil {
		if shared.IsNotFound(err) {
			return nil, fmt.Errorf("%w: restaurant %s does not exist", shared.ErrInvalidInput, req.RestaurantID)
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	now := s.now().UTC()
	item := &models.MenuItem{
		ID:           uuid.New().String(),
		RestaurantID: req.RestaurantID,
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.TrimSpace(req.Category),
		PricePaise:   req.PricePaise,
		Available:    req.Available,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.CreateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return item, nil
}

// Get returns a menu item by id
func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	return s.db.GetMenuItem(ctx, id)
}

// List returns menu items matching filter
func (s *MenuService) List(ctx context.Context, filter shared.MenuFilter) ([]*models.MenuItem, error) {
	return s.db.ListMenuItems(ctx, filter)
}

// RestaurantMenu returns the available items of a restaurant
func (s *MenuService) RestaurantMenu(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	if _, err := s.db.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	available := true
	return s.db.ListMenuItems(ctx, shared.MenuFilter{RestaurantID: restaurantID, Available: &available})
}

// Update applies the set fields of req to a menu item
func (s *MenuService) Update(ctx context.Context, id string, req *models.UpdateMenuItemRequest) (*models.MenuItem, error) {
	item, err := s.db.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		item.Name = name
	}
	if req.Description != "" {
		item.Description = strings.TrimSpace(req.Description)
	}
	if req.Category != "" {
		item.Category = strings.TrimSpace(req.Category)
	}
	if req.PricePaise != nil {
		if *req.PricePaise <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", shared.ErrInvalidInput)
		}
		item.PricePaise = *req.PricePaise
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.db.UpdateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return item, nil
}

// Delete removes a menu item
func (s *MenuService) Delete(ctx context.Context, id string) error {
	return s.db.DeleteMenuItem(ctx, id)
}
