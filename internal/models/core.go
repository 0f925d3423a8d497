package models

import (
	"time"
)

// Core domain models

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "placed"
	OrderAccepted       OrderStatus = "accepted"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderPlaced,
	OrderAccepted,
	OrderPreparing,
	OrderOutForDelivery,
	OrderDelivered,
	OrderCancelled,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:         {OrderAccepted, OrderCancelled},
	OrderAccepted:       {OrderPreparing, OrderCancelled},
	OrderPreparing:      {OrderOutForDelivery},
	OrderOutForDelivery: {OrderDelivered},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InFlightStatuses are the statuses that count towards a delivery agent's load
var InFlightStatuses = []OrderStatus{
	OrderAccepted,
	OrderPreparing,
	OrderOutForDelivery,
}

// Terminal reports whether no further transitions are possible
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentUPI
}

// PaymentStatus tracks settlement of an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Restaurant represents a partner restaurant
type Restaurant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Cuisine   string    `json:"cuisine,omitempty" db:"cuisine"`
	Open      bool      `json:"open" db:"is_open"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MenuItem represents a dish offered by a restaurant
type MenuItem struct {
	ID           string    `json:"id" db:"id"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description,omitempty" db:"description"`
	Category     string    `json:"category,omitempty" db:"category"`
	PricePaise   int64     `json:"price_paise" db:"price_paise"` // Price in paise (1/100 INR)
	Available    bool      `json:"available" db:"available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Order represents a customer order
type Order struct {
	ID              string        `json:"id" db:"id"`
	RestaurantID    string        `json:"restaurant_id" db:"restaurant_id"`
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	CustomerPhone   string        `json:"customer_phone" db:"customer_phone"`
	DeliveryAddress string        `json:"delivery_address" db:"delivery_address"`
	PaymentMethod   PaymentMethod `json:"payment_method" db:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status" db:"payment_status"`
	Status          OrderStatus   `json:"status" db:"status"`
	AgentID         string        `json:"agent_id,omitempty" db:"agent_id"`
	TotalPaise      int64         `json:"total_paise" db:"total_paise"`
	Items           []OrderItem   `json:"items,omitempty" db:"-"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// OrderItem is a single line of an order; name and price are snapshots
type OrderItem struct {
	ID             string `json:"id" db:"id"`
	OrderID        string `json:"order_id" db:"order_id"`
	MenuItemID     string `json:"menu_item_id" db:"menu_item_id"`
	Name           string `json:"name" db:"name"`
	UnitPricePaise int64  `json:"unit_price_paise" db:"unit_price_paise"`
	Quantity       int    `json:"quantity" db:"quantity"`
}

// DeliveryAgent represents a rider who delivers orders
type DeliveryAgent struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrderEvent is an entry in an order's tracking timeline
type OrderEvent struct {
	ID        string      `json:"id" db:"id" bson:"_id"`
	OrderID   string      `json:"order_id" db:"order_id" bson:"order_id"`
	Status    OrderStatus `json:"status" db:"status" bson:"status"`
	Note      string      `json:"note,omitempty" db:"note" bson:"note,omitempty"`
	CreatedAt time.Time   `json:"created_at" db:"created_at" bson:"created_at"`
}

// Admin is a back-office user allowed into the admin surface
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
