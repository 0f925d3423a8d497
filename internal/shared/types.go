package shared

import (
	"time"
)

// MenuFilter provides filtering options for listing menu items
type MenuFilter struct {
	RestaurantID string
	Category     string
	Available    *bool
}

// OrderFilter provides filtering options for listing orders
type OrderFilter struct {
	RestaurantID string
	Status       string
	AgentID      string
	PlacedBefore *time.Time
	Limit        int
	Offset       int
}
