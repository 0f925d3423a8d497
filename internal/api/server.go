package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/cookie"
	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/logger"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/services"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// Server holds the services behind the JSON API controllers
type Server struct {
	db                db.Database
	restaurantService *services.RestaurantService
	menuService       *services.MenuService
	orderService      *services.OrderService
	agentService      *services.AgentService
	cookies           *cookie.Policy
}

// NewServer creates the API over database
func NewServer(database db.Database, cookies *cookie.Policy) *Server {
	return &Server{
		db:                database,
		restaurantService: services.NewRestaurantService(database),
		menuService:       services.NewMenuService(database),
		orderService:      services.NewOrderService(database),
		agentService:      services.NewAgentService(database),
		cookies:           cookies,
	}
}

// Controllers returns the attribute-routed API controllers
func (s *Server) Controllers() []mvc.APIController {
	return []mvc.APIController{
		healthController{s},
		restaurantsController{s},
		menuItemsController{s},
		ordersController{s},
		agentsController{s},
		consentController{s},
	}
}

// Helper methods

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) messageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
	})
}

func (s *Server) paginatedResponse(c *gin.Context, data interface{}, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success: true,
		Data:    data,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int64(total),
			TotalPages: totalPages,
		},
	})
}

func (s *Server) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// handleError maps service errors onto status codes
func (s *Server) handleError(c *gin.Context, err error, action string) {
	switch {
	case shared.IsInvalidInput(err):
		s.errorResponse(c, http.StatusBadRequest, err.Error())
	case shared.IsNotFound(err):
		s.errorResponse(c, http.StatusNotFound, err.Error())
	case shared.IsConflict(err), errors.Is(err, shared.ErrAlreadyExists):
		s.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		s.errorResponse(c, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("Failed to %s: %v", action, err)
		s.errorResponse(c, http.StatusInternalServerError, "Failed to "+action)
	}
}

// bindJSON decodes the request body, answering 400 on failure
func (s *Server) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}
