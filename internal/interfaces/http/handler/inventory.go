package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/stockpilot/backend/internal/application/inventory"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
)

// InventoryHandler serves the live stock snapshot endpoints
type InventoryHandler struct {
	BaseHandler
	service *appinventory.Service
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(service *appinventory.Service) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// View returns the current cache document
func (h *InventoryHandler) View(c *gin.Context) {
	resp, err := h.service.View(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh fetches live levels from the platform and updates the snapshot
func (h *InventoryHandler) Refresh(c *gin.Context) {
	resp, err := h.service.RefreshSnapshot(c.Request.Context(), middleware.GetUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PushStockUpdates pushes available quantities to the platform
func (h *InventoryHandler) PushStockUpdates(c *gin.Context) {
	var req appinventory.StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid stock update payload")
		return
	}
	result, err := h.service.PushStockUpdates(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers the inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.GET("", h.View)

		editors := inv.Group("", middleware.RequireRole(middleware.RoleEditor))
		{
			editors.POST("/refresh", h.Refresh)
			editors.POST("/stock-updates", h.PushStockUpdates)
		}
	}
}
