package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

type healthController struct{ s *Server }

func (healthController) Name() string { return "Health" }

func (h healthController) Routes() []mvc.Route {
	return []mvc.Route{
		{Method: http.MethodGet, Template: "api/[controller]", Action: "Check", Handler: h.s.healthCheck},
	}
}

// healthCheck handles GET /api/Health
//
// @Summary      Report database connectivity
// @Tags         Health
// @Produce      json
// @Success      200 {object} models.APIResponse
// @Failure      503 {object} models.APIResponse
// @Router       /api/Health [get]
func (s *Server) healthCheck(c *gin.Context) {
	// Test database connection
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Success: false,
			Error:   "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"version":   Version,
		},
	})
}
