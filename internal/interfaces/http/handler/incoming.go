package handler

import (
	"github.com/gin-gonic/gin"

	appincoming "github.com/stockpilot/backend/internal/application/incoming"
	"github.com/stockpilot/backend/internal/domain/transfer"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
)

// IncomingHandler serves the incoming-inventory projection
type IncomingHandler struct {
	BaseHandler
	projection *appincoming.ProjectionService
	transfers  transfer.Repository
}

// NewIncomingHandler creates an incoming projection handler
func NewIncomingHandler(projection *appincoming.ProjectionService, transfers transfer.Repository) *IncomingHandler {
	return &IncomingHandler{projection: projection, transfers: transfers}
}

// View returns the current projection document
func (h *IncomingHandler) View(c *gin.Context) {
	cache, err := h.projection.Load(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cache)
}

// Rebuild recomputes the projection from the full transfer ledger
func (h *IncomingHandler) Rebuild(c *gin.Context) {
	ctx := c.Request.Context()

	transfers, err := h.transfers.FindAll(ctx, transfer.ListFilter{})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	cache, err := h.projection.Rebuild(ctx, transfers)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cache)
}

// RegisterRoutes registers the incoming projection routes
func (h *IncomingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	incoming := rg.Group("/incoming")
	{
		incoming.GET("", h.View)
		incoming.POST("/rebuild", middleware.RequireRole(middleware.RoleEditor), h.Rebuild)
	}
}
