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

// RestaurantService provides business logic for the restaurant catalog
type RestaurantService struct {
	db  db.Database
	now func() time.Time
}

// NewRestaurantService creates a new restaurant service
func NewRestaurantService(database db.Database) *RestaurantService {
	return &RestaurantService{db: database, now: time.Now}
}

// Create validates and stores a new restaurant
func (s *RestaurantService) Create(ctx context.Context, req *models.CreateRestaurantRequest) (*models.Restaurant, error) {
	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	if name == "" || address == "" {
		return nil, fmt.Errorf("%w: name and address are required", shared.ErrInvalidInput)
	}

	now := s.now().UTC()
	restaurant := &models.Restaurant{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   address,
		Phone:     strings.TrimSpace(req.Phone),
		Cuisine:   strings.TrimSpace(req.Cuisine),
		Open:      req.Open,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.CreateRestaurant(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	return restaurant, nil
}

// Get returns a restaurant by id
func (s *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.db.GetRestaurant(ctx, id)
}

// List returns restaurants, optionally only open or closed ones
func (s *RestaurantService) List(ctx context.Context, open *bool) ([]*models.Restaurant, error) {
	return s.db.ListRestaurants(ctx, open)
}

// Update applies the non-empty fields of req to a restaurant
func (s *RestaurantService) Update(ctx context.Context, id string, req *models.UpdateRestaurantRequest) (*models.Restaurant, error) {
	restaurant, err := s.db.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		restaurant.Name = name
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		restaurant.Address = address
	}
	if req.Phone != "" {
		restaurant.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Cuisine != "" {
		restaurant.Cuisine = strings.TrimSpace(req.Cuisine)
	}
	if req.Open != nil {
		restaurant.Open = *req.Open
	}
	restaurant.UpdatedAt = s.now().UTC()

	if err := s.db.UpdateRestaurant(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}
	return restaurant, nil
}

// Delete removes a restaurant together with its menu
func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	return s.db.DeleteRestaurant(ctx, id)
}
