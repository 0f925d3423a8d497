package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/shared"
)

type menuItemsController struct{ s *Server }

func (menuItemsController) Name() string { return "MenuItems" }

func (m menuItemsController) Routes() []mvc.Route {
	return []mvc.Route{
		{Method: http.MethodGet, Template: "api/[controller]", Action: "List", Handler: m.s.listMenuItems},
		{Method: http.MethodGet, Template: "api/[controller]/{id}", Action: "Get", Handler: m.s.getMenuItem},
		{Method: http.MethodPost, Template: "api/[controller]", Action: "Create", Policy: mvc.PolicyRequireAdmin, Handler: m.s.createMenuItem},
		{Method: http.MethodPut, Template: "api/[controller]/{id}", Action: "Update", Policy: mvc.PolicyRequireAdmin, Handler: m.s.updateMenuItem},
		{Method: http.MethodDelete, Template: "api/[controller]/{id}", Action: "Delete", Policy: mvc.PolicyRequireAdmin, Handler: m.s.deleteMenuItem},
	}
}

// listMenuItems handles GET /api/MenuItems
//
// @Summary      List menu items
// @Tags         MenuItems
// @Produce      json
// @Param        restaurant_id query string false "Restaurant ID"
// @Param        available query bool false "Filter by availability"
// @Param        category query string false "Category"
// @Success      200 {object} models.APIResponse
// @Router       /api/MenuItems [get]
func (s *Server) listMenuItems(c *gin.Context) {
	filter := shared.MenuFilter{
		RestaurantID: c.Query("restaurant_id"),
		Category:     c.Query("category"),
		Available:    shared.ParseBoolFilter(c, "available"),
	}

	items, err := s.menuService.List(c.Request.Context(), filter)
	if err != nil {
		s.handleError(c, err, "list menu items")
		return
	}

	s.successResponse(c, items)
}

// getMenuItem handles GET /api/MenuItems/:id
//
// @Summary      Get a menu item
// @Tags         MenuItems
// @Produce      json
// @Param        id path string true "Menu item ID"
// @Success      200 {object} models.APIResponse
// @Failure      404 {object} models.APIResponse
// @Router       /api/MenuItems/{id} [get]
func (s *Server) getMenuItem(c *gin.Context) {
	item, err := s.menuService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "get menu item")
		return
	}

	s.successResponse(c, item)
}

// createMenuItem handles POST /api/MenuItems
//
// @Summary      Create a menu item (admin)
// @Tags         MenuItems
// @Accept       json
// @Produce      json
// @Param        item body models.CreateMenuItemRequest true "Menu item"
// @Success      201 {object} models.APIResponse
// @Failure      400 {object} models.APIResponse
// @Router       /api/MenuItems [post]
func (s *Server) createMenuItem(c *gin.Context) {
	var req models.CreateMenuItemRequest
	if !s.bindJSON(c, &req) {
		return
	}

	item, err := s.menuService.Create(c.Request.Context(), &req)
	if err != nil {
		s.handleError(c, err, "create menu item")
		return
	}

	s.createdResponse(c, item)
}

// updateMenuItem handles PUT /api/MenuItems/:id
//
// @Summary      Update a menu item (admin)
// @Tags         MenuItems
// @Accept       json
// @Produce      json
// @Param        id path string true "Menu item ID"
// @Param        item body models.UpdateMenuItemRequest true "Changes"
// @Success      200 {object} models.APIResponse
// @Router       /api/MenuItems/{id} [put]
func (s *Server) updateMenuItem(c *gin.Context) {
	var req models.UpdateMenuItemRequest
	if !s.bindJSON(c, &req) {
		return
	}

	item, err := s.menuService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		s.handleError(c, err, "update menu item")
		return
	}

	s.successResponse(c, item)
}

// deleteMenuItem handles DELETE /api/MenuItems/:id
//
// @Summary      Delete a menu item (admin)
// @Tags         MenuItems
// @Produce      json
// @Param        id path string true "Menu item ID"
// @Success      200 {object} models.APIResponse
// @Router       /api/MenuItems/{id} [delete]
func (s *Server) deleteMenuItem(c *gin.Context) {
	if err := s.menuService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err, "delete menu item")
		return
	}

	s.messageResponse(c, "Menu item deleted successfully")
}
