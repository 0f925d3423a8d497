package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

const (
	restaurantColumns = "id, name, address, phone, cuisine, is_open, created_at, updated_at"
	menuItemColumns   = "id, restaurant_id, name, description, category, price_paise, available, created_at, updated_at"
)

// CreateRestaurant creates a new restaurant
func (s *Store) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	restaurant.CreatedAt = now
	restaurant.UpdatedAt = now

	query := `INSERT INTO restaurants (` + restaurantColumns + `)
		VALUES (:id, :name, :address, :phone, :cuisine, :is_open, :created_at, :updated_at)`
	if _, err := db.NamedExecContext(ctx, query, restaurant); err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}
	return nil
}

// GetRestaurant retrieves a restaurant by ID
func (s *Store) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	query := db.Rebind(`SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = ?`)
	if err := db.GetContext(ctx, &restaurant, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("restaurant %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return &restaurant, nil
}

// ListRestaurants lists restaurants, optionally filtered by open state
func (s *Store) ListRestaurants(ctx context.Context, open *bool) ([]*models.Restaurant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var w where
	if open != nil {
		w.add("is_open = ?", *open)
	}

	restaurants := []*models.Restaurant{}
	query := db.Rebind(`SELECT ` + restaurantColumns + ` FROM restaurants` + w.String() + ` ORDER BY name`)
	if err := db.SelectContext(ctx, &restaurants, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

// UpdateRestaurant updates a restaurant
func (s *Store) UpdateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	restaurant.UpdatedAt = s.now()
	query := `UPDATE restaurants SET name = :name, address = :address, phone = :phone,
		cuisine = :cuisine, is_open = :is_open, updated_at = :updated_at WHERE id = :id`
	result, err := db.NamedExecContext(ctx, query, restaurant)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	return expectRow(result, "restaurant", restaurant.ID)
}

// DeleteRestaurant deletes a restaurant and, through the foreign key, its menu
func (s *Store) DeleteRestaurant(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM restaurants WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	return expectRow(result, "restaurant", id)
}

// CreateMenuItem creates a new menu item
func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `INSERT INTO menu_items (` + menuItemColumns + `)
		VALUES (:id, :restaurant_id, :name, :description, :category, :price_paise, :available, :created_at, :updated_at)`
	if _, err := db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

// GetMenuItem retrieves a menu item by ID
func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var item models.MenuItem
	query := db.Rebind(`SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ?`)
	if err := db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("menu item %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return &item, nil
}

// ListMenuItems lists menu items matching the filter
func (s *Store) ListMenuItems(ctx context.Context, filter shared.MenuFilter) ([]*models.MenuItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var w where
	if filter.RestaurantID != "" {
		w.add("restaurant_id = ?", filter.RestaurantID)
	}
	if filter.Category != "" {
		w.add("category = ?", filter.Category)
	}
	if filter.Available != nil {
		w.add("available = ?", *filter.Available)
	}

	items := []*models.MenuItem{}
	query := db.Rebind(`SELECT ` + menuItemColumns + ` FROM menu_items` + w.String() + ` ORDER BY category, name`)
	if err := db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// UpdateMenuItem updates a menu item
func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	item.UpdatedAt = s.now()
	query := `UPDATE menu_items SET name = :name, description = :description, category = :category,
		price_paise = :price_paise, available = :available, updated_at = :updated_at WHERE id = :id`
	result, err := db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return expectRow(result, "menu item", item.ID)
}

// DeleteMenuItem deletes a menu item
func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM menu_items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return expectRow(result, "menu item", id)
}

func expectRow(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, shared.ErrNotFound)
	}
	return nil
}
