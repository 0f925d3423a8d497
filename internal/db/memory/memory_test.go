package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

func seedOrder(t *testing.T, s *Store, id string, status models.OrderStatus, agentID string, createdAt time.Time) {
	t.Helper()
	s.now = func() time.Time { return createdAt }
	order := &models.Order{
		ID:           id,
		RestaurantID: "r1",
		Status:       status,
		AgentID:      agentID,
		Items: []models.OrderItem{
			{ID: id + "-b", MenuItemID: "m2", Name: "Vada Pav", Quantity: 1},
			{ID: id + "-a", MenuItemID: "m1", Name: "Misal", Quantity: 2},
		},
	}
	require.NoError(t, s.CreateOrder(context.Background(), order))
}

func TestRestaurantLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateRestaurant(ctx, &models.Restaurant{ID: "r2", Name: "Zunka Bhakar", Open: false}))
	require.NoError(t, s.CreateRestaurant(ctx, &models.Restaurant{ID: "r1", Name: "Annapurna", Open: true}))
	require.NoError(t, s.CreateMenuItem(ctx, &models.MenuItem{ID: "m1", RestaurantID: "r1", Name: "Thali"}))

	err := s.CreateRestaurant(ctx, &models.Restaurant{ID: "r1", Name: "Duplicate"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	all, err := s.ListRestaurants(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Annapurna", all[0].Name)

	open := true
	onlyOpen, err := s.ListRestaurants(ctx, &open)
	require.NoError(t, err)
	require.Len(t, onlyOpen, 1)
	assert.Equal(t, "r1", onlyOpen[0].ID)

	require.NoError(t, s.DeleteRestaurant(ctx, "r1"))
	_, err = s.GetMenuItem(ctx, "m1")
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(s.DeleteRestaurant(ctx, "r1")))
}

func TestCreateMenuItemRequiresRestaurant(t *testing.T) {
	s := New()
	err := s.CreateMenuItem(context.Background(), &models.MenuItem{ID: "m1", RestaurantID: "missing"})
	assert.True(t, shared.IsNotFound(err))
}

func TestGetOrderSortsItemsAndCopies(t *testing.T) {
	s := New()
	seedOrder(t, s, "o1", models.OrderPlaced, "", time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))

	order, err := s.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Misal", order.Items[0].Name)
	assert.Equal(t, "o1", order.Items[0].OrderID)

	order.Items[0].Name = "changed"
	again, err := s.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "Misal", again.Items[0].Name)
}

func TestListOrdersFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	seedOrder(t, s, "o1", models.OrderPlaced, "", base)
	seedOrder(t, s, "o2", models.OrderAccepted, "a1", base.Add(time.Minute))
	seedOrder(t, s, "o3", models.OrderPlaced, "", base.Add(2*time.Minute))

	orders, err := s.ListOrders(ctx, shared.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "o3", orders[0].ID)
	assert.Nil(t, orders[0].Items)

	page, err := s.ListOrders(ctx, shared.OrderFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "o1", page[0].ID)

	empty, err := s.ListOrders(ctx, shared.OrderFilter{Limit: 2, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)

	cutoff := base.Add(90 * time.Second)
	stale, err := s.ListOrders(ctx, shared.OrderFilter{Status: string(models.OrderPlaced), PlacedBefore: &cutoff})
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "o1", stale[0].ID)

	count, err := s.CountOrders(ctx, shared.OrderFilter{Status: string(models.OrderPlaced)})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpdateOrderChecksExpectedStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedOrder(t, s, "o1", models.OrderPlaced, "", time.Now().UTC())

	order, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	order.Status = models.OrderAccepted
	require.NoError(t, s.UpdateOrder(ctx, order, models.OrderPlaced))

	order.Status = models.OrderCancelled
	err = s.UpdateOrder(ctx, order, models.OrderPlaced)
	assert.True(t, shared.IsConflict(err))

	err = s.UpdateOrder(ctx, &models.Order{ID: "missing"}, models.OrderPlaced)
	assert.True(t, shared.IsNotFound(err))
}

func TestCountsAndAgentLoads(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()
	seedOrder(t, s, "o1", models.OrderAccepted, "a1", now)
	seedOrder(t, s, "o2", models.OrderOutForDelivery, "a1", now)
	seedOrder(t, s, "o3", models.OrderDelivered, "a2", now)
	seedOrder(t, s, "o4", models.OrderPreparing, "a2", now)

	counts, err := s.CountOrdersByStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, len(models.OrderStatuses))
	assert.Equal(t, 0, counts[models.OrderPlaced])
	assert.Equal(t, 1, counts[models.OrderDelivered])

	loads, err := s.AgentLoads(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a1": 2, "a2": 1}, loads)
}

func TestAdminsAndEvents(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateAdmin(ctx, &models.Admin{ID: "1", Username: "owner"}))
	err := s.CreateAdmin(ctx, &models.Admin{ID: "2", Username: "owner"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	admin, err := s.GetAdminByUsername(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendOrderEvent(ctx, &models.OrderEvent{ID: "e2", OrderID: "o1", Status: models.OrderAccepted, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.AppendOrderEvent(ctx, &models.OrderEvent{ID: "e1", OrderID: "o1", Status: models.OrderPlaced, CreatedAt: base}))

	events, err := s.ListOrderEvents(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)

	none, err := s.ListOrderEvents(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
