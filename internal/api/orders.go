package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/shared"
)

type ordersController struct{ s *Server }

func (ordersController) Name() string { return "Orders" }

func (o ordersController) Routes() []mvc.Route {
	return []mvc.Route{
		{Method: http.MethodPost, Template: "api/[controller]", Action: "Place", Handler: o.s.placeOrder},
		{Method: http.MethodGet, Template: "api/[controller]/{id}", Action: "Get", Handler: o.s.getOrder},
		{Method: http.MethodGet, Template: "api/[controller]/{id}/events", Action: "Events", Handler: o.s.getOrderEvents},
		{Method: http.MethodGet, Template: "api/[controller]", Action: "List", Policy: mvc.PolicyRequireAdmin, Handler: o.s.listOrders},
		{Method: http.MethodPost, Template: "api/[controller]/{id}/status", Action: "Transition", Policy: mvc.PolicyRequireAdmin, Handler: o.s.transitionOrder},
		{Method: http.MethodPost, Template: "api/[controller]/{id}/assign", Action: "Assign", Policy: mvc.PolicyRequireAdmin, Handler: o.s.assignAgent},
	}
}

// placeOrder handles POST /api/Orders
//
// @Summary      Place an order
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        order body models.PlaceOrderRequest true "Order"
// @Success      201 {object} models.APIResponse
// @Failure      400 {object} models.APIResponse
// @Failure      409 {object} models.APIResponse
// @Router       /api/Orders [post]
func (s *Server) placeOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if !s.bindJSON(c, &req) {
		return
	}

	order, err := s.orderService.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		s.handleError(c, err, "place order")
		return
	}

	s.createdResponse(c, order)
}

// getOrder handles GET /api/Orders/:id
//
// @Summary      Track an order
// @Tags         Orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/Orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	order, err := s.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "get order")
		return
	}

	s.successResponse(c, order)
}

// getOrderEvents handles GET /api/Orders/:id/events
//
// @Summary      Order tracking timeline
// @Tags         Orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/Orders/{id}/events [get]
func (s *Server) getOrderEvents(c *gin.Context) {
	events, err := s.orderService.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "get order events")
		return
	}

	s.successResponse(c, events)
}

// listOrders handles GET /api/Orders
//
// @Summary      List orders (admin)
// @Tags         Orders
// @Produce      json
// @Param        status query string false "Status"
// @Param        restaurant_id query string false "Restaurant ID"
// @Param        agent_id query string false "Delivery agent ID"
// @Param        page query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200 {object} models.PaginatedResponse
// @Failure      401 {object} models.APIResponse
// @Router       /api/Orders [get]
func (s *Server) listOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.OrderStatus(status).Valid() {
		s.errorResponse(c, http.StatusBadRequest, "Invalid status: "+status)
		return
	}

	page, limit := shared.ParsePagination(c)
	filter := shared.OrderFilter{
		Status:       status,
		RestaurantID: c.Query("restaurant_id"),
		AgentID:      c.Query("agent_id"),
	}

	orders, total, err := s.orderService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		s.handleError(c, err, "list orders")
		return
	}

	s.paginatedResponse(c, orders, page, limit, total)
}

// transitionOrder handles POST /api/Orders/:id/status
//
// @Summary      Move an order to a new status (admin)
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        transition body models.TransitionOrderRequest true "Transition"
// @Success      200 {object} models.APIResponse
// @Failure      409 {object} models.APIResponse
// @Router       /api/Orders/{id}/status [post]
func (s *Server) transitionOrder(c *gin.Context) {
	var req models.TransitionOrderRequest
	if !s.bindJSON(c, &req) {
		return
	}

	order, err := s.orderService.Transition(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		s.handleError(c, err, "update order status")
		return
	}

	s.successResponse(c, order)
}

// assignAgent handles POST /api/Orders/:id/assign
//
// @Summary      Assign a delivery agent (admin)
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        assignment body models.AssignAgentRequest false "Agent, empty picks the least loaded"
// @Success      200 {object} models.APIResponse
// @Failure      409 {object} models.APIResponse
// @Router       /api/Orders/{id}/assign [post]
func (s *Server) assignAgent(c *gin.Context) {
	var req models.AssignAgentRequest
	// An empty body asks for automatic selection
	if c.Request.ContentLength != 0 && !s.bindJSON(c, &req) {
		return
	}

	order, err := s.orderService.AssignAgent(c.Request.Context(), c.Param("id"), req.AgentID)
	if err != nil {
		s.handleError(c, err, "assign delivery agent")
		return
	}

	s.successResponse(c, order)
}
