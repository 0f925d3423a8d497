package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/shared"
)

type restaurantsController struct{ s *Server }

func (restaurantsController) Name() string { return "Restaurants" }

func (r restaurantsController) Routes() []mvc.Route {
	return []mvc.Route{
		{Method: http.MethodGet, Template: "api/[controller]", Action: "List", Handler: r.s.listRestaurants},
		{Method: http.MethodGet, Template: "api/[controller]/{id}", Action: "Get", Handler: r.s.getRestaurant},
		{Method: http.MethodGet, Template: "api/[controller]/{id}/menu", Action: "Menu", Handler: r.s.getRestaurantMenu},
		{Method: http.MethodPost, Template: "api/[controller]", Action: "Create", Policy: mvc.PolicyRequireAdmin, Handler: r.s.createRestaurant},
		{Method: http.MethodPut, Template: "api/[controller]/{id}", Action: "Update", Policy: mvc.PolicyRequireAdmin, Handler: r.s.updateRestaurant},
		{Method: http.MethodDelete, Template: "api/[controller]/{id}", Action: "Delete", Policy: mvc.PolicyRequireAdmin, Handler: r.s.deleteRestaurant},
	}
}

// listRestaurants handles GET /api/Restaurants
//
// @Summary      List restaurants
// @Tags         Restaurants
// @Produce      json
// @Param        open query bool false "Filter by open state"
// @Success      200 {object} models.APIResponse
// @Router       /api/Restaurants [get]
func (s *Server) listRestaurants(c *gin.Context) {
	restaurants, err := s.restaurantService.List(c.Request.Context(), shared.ParseBoolFilter(c, "open"))
	if err != nil {
		s.handleError(c, err, "list restaurants")
		return
	}

	s.successResponse(c, restaurants)
}

// getRestaurant handles GET /api/Restaurants/:id
//
// @Summary      Get a restaurant
// @Tags         Restaurants
// @Produce      json
// @Param        id path string true "Restaurant ID"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/Restaurants/{id} [get]
func (s *Server) getRestaurant(c *gin.Context) {
	restaurant, err := s.restaurantService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "get restaurant")
		return
	}

	s.successResponse(c, restaurant)
}

// getRestaurantMenu handles GET /api/Restaurants/:id/menu
//
// @Summary      List the available menu of a restaurant
// @Tags         Restaurants
// @Produce      json
// @Param        id path string true "Restaurant ID"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/Restaurants/{id}/menu [get]
func (s *Server) getRestaurantMenu(c *gin.Context) {
	items, err := s.menuService.RestaurantMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "get menu")
		return
	}

	s.successResponse(c, items)
}

// createRestaurant handles POST /api/Restaurants
//
// @Summary      Create a restaurant (admin)
// @Tags         Restaurants
// @Accept       json
// @Produce      json
// @Param        restaurant body models.CreateRestaurantRequest true "Restaurant"
// @Success      201 {object} models.APIResponse
// @Failure      400 {object} models.APIResponse
// @Failure      401 {object} models.APIResponse
// @Router       /api/Restaurants [post]
func (s *Server) createRestaurant(c *gin.Context) {
	var req models.CreateRestaurantRequest
	if !s.bindJSON(c, &req) {
		return
	}

	restaurant, err := s.restaurantService.Create(c.Request.Context(), &req)
	if err != nil {
		s.handleError(c, err, "create restaurant")
		return
	}

	s.createdResponse(c, restaurant)
}

// updateRestaurant handles PUT /api/Restaurants/:id
//
// @Summary      Update a restaurant (admin)
// @Tags         Restaurants
// @Accept       json
// @Produce      json
// @Param        id path string true "Restaurant ID"
// @Param        restaurant body models.UpdateRestaurantRequest true "Changes"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/Restaurants/{id} [put]
func (s *Server) updateRestaurant(c *gin.Context) {
	var req models.UpdateRestaurantRequest
	if !s.bindJSON(c, &req) {
		return
	}

	restaurant, err := s.restaurantService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		s.handleError(c, err, "update restaurant")
		return
	}

	s.successResponse(c, restaurant)
}

// deleteRestaurant handles DELETE /api/Restaurants/:id
//
// @Summary      Delete a restaurant (admin)
// @Tags         Restaurants
// @Produce      json
// @Param        id path string true "Restaurant ID"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/Restaurants/{id} [delete]
func (s *Server) deleteRestaurant(c *gin.Context) {
	if err := s.restaurantService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err, "delete restaurant")
		return
	}

	s.messageResponse(c, "Restaurant deleted successfully")
}
