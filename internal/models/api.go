package models

import "time"

// API envelope and request/response structures

// APIResponse is the envelope returned by every JSON endpoint
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Pagination describes a page of a list response
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type CreateRestaurantRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Address string `json:"address" binding:"required,max=255"`
	Phone   string `json:"phone,omitempty" binding:"max=20"`
	Cuisine string `json:"cuisine,omitempty" binding:"max=60"`
	Open    bool   `json:"open"`
}

type UpdateRestaurantRequest struct {
	Name    string `json:"name,omitempty" binding:"max=120"`
	Address string `json:"address,omitempty" binding:"max=255"`
	Phone   string `json:"phone,omitempty" binding:"max=20"`
	Cuisine string `json:"cuisine,omitempty" binding:"max=60"`
	Open    *bool  `json:"open,omitempty"`
}

type CreateMenuItemRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
	Name         string `json:"name" binding:"required,max=120"`
	Description  string `json:"description,omitempty" binding:"max=500"`
	Category     string `json:"category,omitempty" binding:"max=60"`
	PricePaise   int64  `json:"price_paise" binding:"required,gt=0"`
	Available    bool   `json:"available"`
}

type UpdateMenuItemRequest struct {
	Name        string `json:"name,omitempty" binding:"max=120"`
	Description string `json:"description,omitempty" binding:"max=500"`
	Category    string `json:"category,omitempty" binding:"max=60"`
	PricePaise  *int64 `json:"price_paise,omitempty"`
	Available   *bool  `json:"available,omitempty"`
}

type OrderLineRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1,max=50"`
}

type PlaceOrderRequest struct {
	RestaurantID    string             `json:"restaurant_id" binding:"required"`
	CustomerName    string             `json:"customer_name" binding:"required,max=120"`
	CustomerPhone   string             `json:"customer_phone" binding:"required,max=20"`
	DeliveryAddress string             `json:"delivery_address" binding:"required,max=255"`
	PaymentMethod   PaymentMethod      `json:"payment_method" binding:"required,oneof=cash card upi"`
	Items           []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type TransitionOrderRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Note   string      `json:"note,omitempty" binding:"max=255"`
}

type AssignAgentRequest struct {
	AgentID string `json:"agent_id,omitempty"`
}

type CreateAgentRequest struct {
	Name   string `json:"name" binding:"required,max=120"`
	Phone  string `json:"phone" binding:"required,max=20"`
	Active bool   `json:"active"`
}

type UpdateAgentRequest struct {
	Name   string `json:"name,omitempty" binding:"max=120"`
	Phone  string `json:"phone,omitempty" binding:"max=20"`
	Active *bool  `json:"active,omitempty"`
}

// DashboardOverview aggregates counts shown on the admin dashboard
type DashboardOverview struct {
	Restaurants     int                 `json:"restaurants"`
	OpenRestaurants int                 `json:"open_restaurants"`
	AvailableItems  int                 `json:"available_items"`
	ActiveAgents    int                 `json:"active_agents"`
	OrdersByStatus  map[OrderStatus]int `json:"orders_by_status"`
	RecentOrders    []*Order            `json:"recent_orders"`
	GeneratedAt     time.Time           `json:"generated_at"`
}
