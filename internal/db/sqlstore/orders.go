package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

const orderColumns = "id, restaurant_id, customer_name, customer_phone, delivery_address, payment_method, " +
	"payment_status, status, agent_id, total_paise, created_at, updated_at"

// CreateOrder inserts an order and its lines in one transaction
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (` + orderColumns + `) VALUES (:id, :restaurant_id, :customer_name,
		:customer_phone, :delivery_address, :payment_method, :payment_status, :status, :agent_id,
		:total_paise, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (id, order_id, menu_item_id, name, unit_price_paise, quantity)
		VALUES (:id, :order_id, :menu_item_id, :name, :unit_price_paise, :quantity)`
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if _, err := tx.NamedExecContext(ctx, itemQuery, &order.Items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order with its lines
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var order models.Order
	query := db.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE id = ?`)
	if err := db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemQuery := db.Rebind(`SELECT id, order_id, menu_item_id, name, unit_price_paise, quantity
		FROM order_items WHERE order_id = ? ORDER BY name`)
	if err := db.SelectContext(ctx, &order.Items, itemQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	return &order, nil
}

func orderWhere(filter shared.OrderFilter) *where {
	w := &where{}
	if filter.RestaurantID != "" {
		w.add("restaurant_id = ?", filter.RestaurantID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.AgentID != "" {
		w.add("agent_id = ?", filter.AgentID)
	}
	if filter.PlacedBefore != nil {
		w.add("created_at < ?", filter.PlacedBefore.UTC())
	}
	return w
}

// ListOrders lists orders newest first. Order lines are not loaded.
func (s *Store) ListOrders(ctx context.Context, filter shared.OrderFilter) ([]*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	w := orderWhere(filter)
	query := `SELECT ` + orderColumns + ` FROM orders` + w.String() + ` ORDER BY created_at DESC`
	args := w.args
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	orders := []*models.Order{}
	if err := db.SelectContext(ctx, &orders, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CountOrders counts orders matching the filter, ignoring limit and offset
func (s *Store) CountOrders(ctx context.Context, filter shared.OrderFilter) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	w := orderWhere(filter)
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(`SELECT COUNT(*) FROM orders`+w.String()), w.args...); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// UpdateOrder updates the mutable fields of an order if its stored status is still expected
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order, expected models.OrderStatus) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	order.UpdatedAt = s.now()
	query := db.Rebind(`UPDATE orders SET status = ?, payment_status = ?, agent_id = ?, updated_at = ?
		WHERE id = ? AND status = ?`)
	result, err := db.ExecContext(ctx, query,
		order.Status, order.PaymentStatus, order.AgentID, order.UpdatedAt, order.ID, expected)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists int
	if err := db.GetContext(ctx, &exists, db.Rebind(`SELECT COUNT(*) FROM orders WHERE id = ?`), order.ID); err != nil {
		return fmt.Errorf("failed to check order: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("order %s: %w", order.ID, shared.ErrNotFound)
	}
	return fmt.Errorf("order %s is no longer %s: %w", order.ID, expected, shared.ErrConflict)
}

// CountOrdersByStatus returns the number of orders in each status
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.OrderStatus `db:"status"`
		Count  int                `db:"count"`
	}
	if err := db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`); err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// AgentLoads returns the number of in-flight orders per delivery agent
func (s *Store) AgentLoads(ctx context.Context) (map[string]int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(`SELECT agent_id, COUNT(*) AS count FROM orders
		WHERE agent_id <> '' AND status IN (?) GROUP BY agent_id`, models.InFlightStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent load query: %w", err)
	}

	var rows []struct {
		AgentID string `db:"agent_id"`
		Count   int    `db:"count"`
	}
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to count agent loads: %w", err)
	}

	loads := make(map[string]int, len(rows))
	for _, row := range rows {
		loads[row.AgentID] = row.Count
	}
	return loads, nil
}
