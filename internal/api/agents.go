package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/shared"
)

type agentsController struct{ s *Server }

func (agentsController) Name() string { return "DeliveryAgents" }

func (a agentsController) Routes() []mvc.Route {
	return []mvc.Route{
		{Method: http.MethodGet, Template: "api/[controller]", Action: "List", Policy: mvc.PolicyRequireAdmin, Handler: a.s.listAgents},
		{Method: http.MethodPost, Template: "api/[controller]", Action: "Create", Policy: mvc.PolicyRequireAdmin, Handler: a.s.createAgent},
		{Method: http.MethodPut, Template: "api/[controller]/{id}", Action: "Update", Policy: mvc.PolicyRequireAdmin, Handler: a.s.updateAgent},
	}
}

// listAgents handles GET /api/DeliveryAgents
//
// @Summary      List delivery agents (admin)
// @Tags         DeliveryAgents
// @Produce      json
// @Param        active query bool false "Filter by active state"
// @Success      200 {object} models.APIResponse
// @Router       /api/DeliveryAgents [get]
func (s *Server) listAgents(c *gin.Context) {
	agents, err := s.agentService.List(c.Request.Context(), shared.ParseBoolFilter(c, "active"))
	if err != nil {
		s.handleError(c, err, "list delivery agents")
		return
	}

	s.successResponse(c, agents)
}

// createAgent handles POST /api/DeliveryAgents
//
// @Summary      Create a delivery agent (admin)
// @Tags         DeliveryAgents
// @Accept       json
// @Produce      json
// @Param        agent body models.CreateAgentRequest true "Agent"
// @Success      201 {object} models.APIResponse
// @Router       /api/DeliveryAgents [post]
func (s *Server) createAgent(c *gin.Context) {
	var req models.CreateAgentRequest
	if !s.bindJSON(c, &req) {
		return
	}

	agent, err := s.agentService.Create(c.Request.Context(), &req)
	if err != nil {
		s.handleError(c, err, "create delivery agent")
		return
	}

	s.createdResponse(c, agent)
}

// updateAgent handles PUT /api/DeliveryAgents/:id
//
// @Summary      Update a delivery agent (admin)
// @Tags         DeliveryAgents
// @Accept       json
// @Produce      json
// @Param        id path string true "Agent ID"
// @Param        agent body models.UpdateAgentRequest true "Changes"
// @Success      200 {object} models.APIResponse
// @Router       /api/DeliveryAgents/{id} [put]
func (s *Server) updateAgent(c *gin.Context) {
	var req models.UpdateAgentRequest
	if !s.bindJSON(c, &req) {
		return
	}

	agent, err := s.agentService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		s.handleError(c, err, "update delivery agent")
		return
	}

	s.successResponse(c, agent)
}
