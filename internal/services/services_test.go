package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aklujeats/aklujeats/internal/db/memory"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

type fixture struct {
	store       *memory.Store
	restaurants *RestaurantService
	menu        *MenuService
	orders      *OrderService
	agents      *AgentService
	restaurant  *models.Restaurant
	thali       *models.MenuItem
	lassi       *models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	f := &fixture{
		store:       store,
		restaurants: NewRestaurantService(store),
		menu:        NewMenuService(store),
		orders:      NewOrderService(store),
		agents:      NewAgentService(store),
	}

	var err error
	f.restaurant, err = f.restaurants.Create(ctx, &models.CreateRestaurantRequest{
		Name:    "Hotel Shivneri",
		Address: "Station Road, Akluj",
		Open:    true,
	})
	require.NoError(t, err)

	f.thali, err = f.menu.Create(ctx, &models.CreateMenuItemRequest{
		RestaurantID: f.restaurant.ID,
		Name:         "Veg Thali",
		Category:     "Meals",
		PricePaise:   18000,
		Available:    true,
	})
	require.NoError(t, err)

	f.lassi, err = f.menu.Create(ctx, &models.CreateMenuItemRequest{
		RestaurantID: f.restaurant.ID,
		Name:         "Sweet Lassi",
		Category:     "Drinks",
		PricePaise:   6000,
		Available:    true,
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) placeOrder(t *testing.T, method models.PaymentMethod) *models.Order {
	t.Helper()
	order, err := f.orders.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		RestaurantID:    f.restaurant.ID,
		CustomerName:    "Sunita",
		CustomerPhone:   "9876543210",
		DeliveryAddress: "Shankarnagar, Akluj",
		PaymentMethod:   method,
		Items:           []models.OrderLineRequest{{MenuItemID: f.thali.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	return order
}

func TestMenuCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.menu.Create(ctx, &models.CreateMenuItemRequest{RestaurantID: f.restaurant.ID, Name: "Free", PricePaise: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.menu.Create(ctx, &models.CreateMenuItemRequest{RestaurantID: "missing", Name: "Vada Pav", PricePaise: 2000})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	price := int64(-1)
	_, err = f.menu.Update(ctx, f.thali.ID, &models.UpdateMenuItemRequest{PricePaise: &price})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	unavailable := false
	_, err = f.menu.Update(ctx, f.lassi.ID, &models.UpdateMenuItemRequest{Available: &unavailable})
	require.NoError(t, err)

	menu, err := f.menu.RestaurantMenu(ctx, f.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Veg Thali", menu[0].Name)

	_, err = f.menu.RestaurantMenu(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.PlaceOrder(ctx, &models.PlaceOrderRequest{
		RestaurantID:    f.restaurant.ID,
		CustomerName:    " Sunita ",
		CustomerPhone:   "9876543210",
		DeliveryAddress: "Shankarnagar, Akluj",
		PaymentMethod:   models.PaymentUPI,
		Items: []models.OrderLineRequest{
			{MenuItemID: f.thali.ID, Quantity: 2},
			{MenuItemID: f.lassi.ID, Quantity: 1},
			{MenuItemID: f.thali.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "Sunita", order.CustomerName)
	assert.Equal(t, int64(3*18000+6000), order.TotalPaise)
	require.Len(t, order.Items, 2, "repeated items are merged")
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, "Veg Thali", order.Items[0].Name)
	assert.Equal(t, int64(18000), order.Items[0].UnitPricePaise)

	events, err := f.orders.Events(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.OrderPlaced, events[0].Status)
}

func TestPlaceOrderRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.restaurants.Create(ctx, &models.CreateRestaurantRequest{Name: "Annapurna", Address: "Main Road"})
	require.NoError(t, err)
	otherItem, err := f.menu.Create(ctx, &models.CreateMenuItemRequest{RestaurantID: other.ID, Name: "Misal", PricePaise: 9000, Available: true})
	require.NoError(t, err)
	unavailable, err := f.menu.Create(ctx, &models.CreateMenuItemRequest{RestaurantID: f.restaurant.ID, Name: "Biryani", PricePaise: 25000})
	require.NoError(t, err)

	base := func() *models.PlaceOrderRequest {
		return &models.PlaceOrderRequest{
			RestaurantID:    f.restaurant.ID,
			CustomerName:    "Sunita",
			CustomerPhone:   "9876543210",
			DeliveryAddress: "Shankarnagar",
			PaymentMethod:   models.PaymentCash,
			Items:           []models.OrderLineRequest{{MenuItemID: f.thali.ID, Quantity: 1}},
		}
	}

	tests := []struct {
		name   string
		mutate func(req *models.PlaceOrderRequest)
		want   error
	}{
		{"no items", func(r *models.PlaceOrderRequest) { r.Items = nil }, shared.ErrInvalidInput},
		{"quantity too large", func(r *models.PlaceOrderRequest) { r.Items[0].Quantity = 51 }, shared.ErrInvalidInput},
		{"merged quantity too large", func(r *models.PlaceOrderRequest) {
			r.Items = []models.OrderLineRequest{{MenuItemID: f.thali.ID, Quantity: 30}, {MenuItemID: f.thali.ID, Quantity: 21}}
		}, shared.ErrInvalidInput},
		{"zero quantity", func(r *models.PlaceOrderRequest) { r.Items[0].Quantity = 0 }, shared.ErrInvalidInput},
		{"bad payment method", func(r *models.PlaceOrderRequest) { r.PaymentMethod = "cheque" }, shared.ErrInvalidInput},
		{"missing address", func(r *models.PlaceOrderRequest) { r.DeliveryAddress = " " }, shared.ErrInvalidInput},
		{"unknown restaurant", func(r *models.PlaceOrderRequest) { r.RestaurantID = "missing" }, shared.ErrNotFound},
		{"closed restaurant", func(r *models.PlaceOrderRequest) {
			r.RestaurantID = other.ID
			r.Items[0].MenuItemID = otherItem.ID
		}, shared.ErrConflict},
		{"item from another restaurant", func(r *models.PlaceOrderRequest) { r.Items[0].MenuItemID = otherItem.ID }, shared.ErrInvalidInput},
		{"unknown item", func(r *models.PlaceOrderRequest) { r.Items[0].MenuItemID = "missing" }, shared.ErrInvalidInput},
		{"unavailable item", func(r *models.PlaceOrderRequest) { r.Items[0].MenuItemID = unavailable.ID }, shared.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)
			_, err := f.orders.PlaceOrder(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransitionPaymentRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.agents.Create(ctx, &models.CreateAgentRequest{Name: "Ravi", Phone: "9000000001", Active: true})
	require.NoError(t, err)

	t.Run("online payment settles on acceptance", func(t *testing.T) {
		order := f.placeOrder(t, models.PaymentCard)
		updated, err := f.orders.Transition(ctx, order.ID, models.OrderAccepted, "")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)

		cancelled, err := f.orders.Transition(ctx, order.ID, models.OrderCancelled, "customer request")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRefunded, cancelled.PaymentStatus)
	})

	t.Run("cash settles on delivery", func(t *testing.T) {
		order := f.placeOrder(t, models.PaymentCash)
		for _, status := range []models.OrderStatus{models.OrderAccepted, models.OrderPreparing} {
			updated, err := f.orders.Transition(ctx, order.ID, status, "")
			require.NoError(t, err)
			assert.Equal(t, models.PaymentPending, updated.PaymentStatus)
		}

		_, err := f.orders.Transition(ctx, order.ID, models.OrderOutForDelivery, "")
		assert.ErrorIs(t, err, shared.ErrConflict, "an agent is required before dispatch")

		_, err = f.orders.AssignAgent(ctx, order.ID, "")
		require.NoError(t, err)
		_, err = f.orders.Transition(ctx, order.ID, models.OrderOutForDelivery, "")
		require.NoError(t, err)

		delivered, err := f.orders.Transition(ctx, order.ID, models.OrderDelivered, "")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, delivered.PaymentStatus)

		events, err := f.orders.Events(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, events, 6)
		assert.Equal(t, "assigned to Ravi", events[3].Note)
		assert.Equal(t, models.OrderDelivered, events[5].Status)
	})

	t.Run("cancelling an unpaid order keeps it pending", func(t *testing.T) {
		order := f.placeOrder(t, models.PaymentCash)
		cancelled, err := f.orders.Transition(ctx, order.ID, models.OrderCancelled, "")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, cancelled.PaymentStatus)
	})

	t.Run("illegal transitions", func(t *testing.T) {
		order := f.placeOrder(t, models.PaymentCash)
		_, err := f.orders.Transition(ctx, order.ID, models.OrderDelivered, "")
		assert.ErrorIs(t, err, shared.ErrConflict)

		_, err = f.orders.Transition(ctx, order.ID, "teleported", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = f.orders.Transition(ctx, "missing", models.OrderAccepted, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = f.orders.Transition(ctx, order.ID, models.OrderCancelled, "")
		require.NoError(t, err)
		_, err = f.orders.Transition(ctx, order.ID, models.OrderAccepted, "")
		assert.ErrorIs(t, err, shared.ErrConflict, "cancelled is terminal")
	})
}

func TestAssignAgentPicksLeastLoaded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bala, err := f.agents.Create(ctx, &models.CreateAgentRequest{Name: "Bala", Phone: "9000000002", Active: true})
	require.NoError(t, err)
	asha, err := f.agents.Create(ctx, &models.CreateAgentRequest{Name: "Asha", Phone: "9000000001", Active: true})
	require.NoError(t, err)
	idle, err := f.agents.Create(ctx, &models.CreateAgentRequest{Name: "Aaron", Phone: "9000000003"})
	require.NoError(t, err)

	accept := func() *models.Order {
		order := f.placeOrder(t, models.PaymentCash)
		_, err := f.orders.Transition(ctx, order.ID, models.OrderAccepted, "")
		require.NoError(t, err)
		return order
	}

	first, err := f.orders.AssignAgent(ctx, accept().ID, "")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, first.AgentID, "ties go to the first name")

	second, err := f.orders.AssignAgent(ctx, accept().ID, "")
	require.NoError(t, err)
	assert.Equal(t, bala.ID, second.AgentID)

	_, err = f.orders.AssignAgent(ctx, accept().ID, idle.ID)
	assert.ErrorIs(t, err, shared.ErrConflict, "inactive agents cannot be assigned")

	_, err = f.orders.AssignAgent(ctx, accept().ID, "missing")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	placed := f.placeOrder(t, models.PaymentCash)
	_, err = f.orders.AssignAgent(ctx, placed.ID, bala.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)

	explicit, err := f.orders.AssignAgent(ctx, accept().ID, bala.ID)
	require.NoError(t, err)
	assert.Equal(t, bala.ID, explicit.AgentID)
}

func TestAssignAgentWithoutActiveAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, models.PaymentCard)
	_, err := f.orders.Transition(ctx, order.ID, models.OrderAccepted, "")
	require.NoError(t, err)

	_, err = f.orders.AssignAgent(ctx, order.ID, "")
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestSweepStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.placeOrder(t, models.PaymentCash)
	accepted := f.placeOrder(t, models.PaymentCard)
	_, err := f.orders.Transition(ctx, accepted.ID, models.OrderAccepted, "")
	require.NoError(t, err)

	n, err := f.orders.SweepStale(ctx, 45*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "fresh orders are kept")

	f.orders.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err = f.orders.SweepStale(ctx, 45*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	order, err := f.orders.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)

	order, err = f.orders.Get(ctx, accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, order.Status)
}

func TestOrderList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.placeOrder(t, models.PaymentCash)
	}

	orders, total, err := f.orders.List(ctx, shared.OrderFilter{Status: string(models.OrderPlaced)}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, orders, 1)
}

func TestAdminService(t *testing.T) {
	store := memory.New()
	admins := NewAdminService(store)
	admins.cost = bcrypt.MinCost
	ctx := context.Background()

	_, err := admins.CreateAdmin(ctx, "admin", "short")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = admins.CreateAdmin(ctx, " ", "long enough")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	created, err := admins.CreateAdmin(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", created.PasswordHash)

	_, err = admins.CreateAdmin(ctx, "admin", "another-pass")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	admin, err := admins.Authenticate(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, admin.ID)

	_, err = admins.Authenticate(ctx, "admin", "wrong-pass")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = admins.Authenticate(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestDashboardOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dashboard := NewDashboardService(f.store)

	ravi, err := f.agents.Create(ctx, &models.CreateAgentRequest{Name: "Ravi", Phone: "9000000001", Active: true})
	require.NoError(t, err)
	_, err = f.agents.Create(ctx, &models.CreateAgentRequest{Name: "Meena", Phone: "9000000002", Active: true})
	require.NoError(t, err)

	order := f.placeOrder(t, models.PaymentCard)
	f.placeOrder(t, models.PaymentCash)
	_, err = f.orders.Transition(ctx, order.ID, models.OrderAccepted, "")
	require.NoError(t, err)
	_, err = f.orders.AssignAgent(ctx, order.ID, ravi.ID)
	require.NoError(t, err)

	overview, err := dashboard.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Restaurants)
	assert.Equal(t, 1, overview.OpenRestaurants)
	assert.Equal(t, 2, overview.AvailableItems)
	assert.Equal(t, 2, overview.ActiveAgents)
	assert.Equal(t, 1, overview.OrdersByStatus[models.OrderPlaced])
	assert.Equal(t, 1, overview.OrdersByStatus[models.OrderAccepted])
	assert.Equal(t, 0, overview.OrdersByStatus[models.OrderDelivered])
	assert.Len(t, overview.RecentOrders, 2)

	workloads, err := dashboard.GetAgentWorkloads(ctx)
	require.NoError(t, err)
	require.Len(t, workloads, 2)
	assert.Equal(t, AgentWorkload{AgentID: ravi.ID, Name: "Ravi", InFlight: 1}, workloads[0])
	assert.Equal(t, 0, workloads[1].InFlight)
}
