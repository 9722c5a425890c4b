package handler

import (
	"github.com/gin-gonic/gin"

	apptransfer "github.com/stockpilot/backend/internal/application/transfer"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
)

// TransferHandler serves the transfer ledger endpoints
type TransferHandler struct {
	BaseHandler
	service *apptransfer.Service
}

// NewTransferHandler creates a transfer handler
func NewTransferHandler(service *apptransfer.Service) *TransferHandler {
	return &TransferHandler{service: service}
}

// List returns transfers matching the query, newest first
func (h *TransferHandler) List(c *gin.Context) {
	var query apptransfer.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid list query")
		return
	}
	transfers, err := h.service.List(c.Request.Context(), &query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfers)
}

// Get returns one transfer
func (h *TransferHandler) Get(c *gin.Context) {
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

// Create creates a draft transfer
func (h *TransferHandler) Create(c *gin.Context) {
	var req apptransfer.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid transfer payload")
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

// Update edits shipping details and items of a transfer
func (h *TransferHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req apptransfer.UpdateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid transfer payload")
		return
	}
	resp, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Dispatch moves a draft transfer in transit
func (h *TransferHandler) Dispatch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.Dispatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordDelivery logs per-SKU delivered deltas
func (h *TransferHandler) RecordDelivery(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req apptransfer.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid delivery payload")
		return
	}
	resp, err := h.service.RecordDelivery(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels a transfer
func (h *TransferHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req apptransfer.CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid cancel payload")
		return
	}
	resp, err := h.service.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers the transfer routes. Mutations require the
// editor role.
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.GET("", h.List)
		transfers.GET("/:id", h.Get)

		editors := transfers.Group("", middleware.RequireRole(middleware.RoleEditor))
		{
			editors.POST("", h.Create)
			editors.PUT("/:id", h.Update)
			editors.POST("/:id/dispatch", h.Dispatch)
			editors.POST("/:id/deliveries", h.RecordDelivery)
			editors.POST("/:id/cancel", h.Cancel)
		}
	}
}
