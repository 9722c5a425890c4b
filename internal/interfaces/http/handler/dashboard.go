package handler

import (
	"github.com/gin-gonic/gin"

	appdashboard "github.com/stockpilot/backend/internal/application/dashboard"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
)

// DashboardHandler serves the SKU comment and hidden-SKU endpoints
type DashboardHandler struct {
	BaseHandler
	service *appdashboard.Service
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(service *appdashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// CommentRequest sets the comment for a SKU
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// HiddenSKUsRequest replaces the hidden-SKU list
type HiddenSKUsRequest struct {
	SKUs []string `json:"skus"`
}

// ListComments returns all SKU comments
func (h *DashboardHandler) ListComments(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comments)
}

// UpsertComment sets the comment for the SKU in the path
func (h *DashboardHandler) UpsertComment(c *gin.Context) {
	sku := c.Param("sku")
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid comment payload")
		return
	}
	comment, err := h.service.UpsertComment(c.Request.Context(), sku, req.Text, middleware.GetUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comment)
}

// DeleteComment removes the comment for the SKU in the path
func (h *DashboardHandler) DeleteComment(c *gin.Context) {
	if err := h.service.DeleteComment(c.Request.Context(), c.Param("sku")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// HiddenSKUs returns the hidden-SKU list
func (h *DashboardHandler) HiddenSKUs(c *gin.Context) {
	skus, err := h.service.HiddenSKUs(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, skus)
}

// SetHiddenSKUs replaces the hidden-SKU list
func (h *DashboardHandler) SetHiddenSKUs(c *gin.Context) {
	var req HiddenSKUsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid hidden SKUs payload")
		return
	}
	skus, err := h.service.SetHiddenSKUs(c.Request.Context(), req.SKUs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, skus)
}

// RegisterRoutes registers the dashboard annotation routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sku-comments", h.ListComments)
	rg.GET("/hidden-skus", h.HiddenSKUs)

	editors := rg.Group("", middleware.RequireRole(middleware.RoleEditor))
	{
		editors.PUT("/sku-comments/:sku", h.UpsertComment)
		editors.DELETE("/sku-comments/:sku", h.DeleteComment)
		editors.PUT("/hidden-skus", h.SetHiddenSKUs)
	}
}
