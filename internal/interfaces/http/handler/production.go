package handler

import (
	"github.com/gin-gonic/gin"

	appproduction "github.com/stockpilot/backend/internal/application/production"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
)

// ProductionHandler serves the production order endpoints
type ProductionHandler struct {
	BaseHandler
	service *appproduction.Service
}

// NewProductionHandler creates a production order handler
func NewProductionHandler(service *appproduction.Service) *ProductionHandler {
	return &ProductionHandler{service: service}
}

// List returns orders matching the query, newest first
func (h *ProductionHandler) List(c *gin.Context) {
	var query appproduction.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid list query")
		return
	}
	orders, err := h.service.List(c.Request.Context(), &query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get returns one order
func (h *ProductionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create places a production order
func (h *ProductionHandler) Create(c *gin.Context) {
	var req appproduction.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid order payload")
		return
	}
	resp, err := h.service.Create(c.Request.Context(), &req,
		middleware.GetUsername(c), middleware.GetEmail(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update edits order details
func (h *ProductionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req appproduction.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid order payload")
		return
	}
	resp, err := h.service.Update(c.Request.Context(), id, &req, middleware.GetUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LogDelivery records delivered quantities from the factory
func (h *ProductionHandler) LogDelivery(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req appproduction.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid delivery payload")
		return
	}
	resp, err := h.service.LogDelivery(c.Request.Context(), id, &req, middleware.GetUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels an order
func (h *ProductionHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req appproduction.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid cancel payload")
		return
	}
	resp, err := h.service.Cancel(c.Request.Context(), id, &req, middleware.GetUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activity returns the immutable activity log for an order
func (h *ProductionHandler) Activity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	activity, err := h.service.Activity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// RegisterRoutes registers the production order routes
func (h *ProductionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/production-orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/:id/activity", h.Activity)

		editors := orders.Group("", middleware.RequireRole(middleware.RoleEditor))
		{
			editors.POST("", h.Create)
			editors.PUT("/:id", h.Update)
			editors.POST("/:id/deliveries", h.LogDelivery)
			editors.POST("/:id/cancel", h.Cancel)
		}
	}
}
