package production

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockpilot/backend/internal/domain/production"
)

// ItemRequest is one SKU line in a create request
type ItemRequest struct {
	SKU      string `json:"sku" binding:"required,sku"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest places a production order
type CreateOrderRequest struct {
	OrderNumber string        `json:"order_number" binding:"required"`
	Factory     string        `json:"factory" binding:"required"`
	Destination string        `json:"destination" binding:"required"`
	ExpectedAt  *time.Time    `json:"expected_at"`
	Notes       string        `json:"notes"`
	Items       []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest edits order details
type UpdateOrderRequest struct {
	Factory     string     `json:"factory"`
	Destination string     `json:"destination"`
	ExpectedAt  *time.Time `json:"expected_at"`
	Notes       string     `json:"notes"`
}

// DeliveryRequest logs per-SKU delivered deltas from the factory
type DeliveryRequest struct {
	Deltas map[string]int `json:"deltas" binding:"required,min=1"`
	Note   string         `json:"note"`
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ListQuery narrows order listings
type ListQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=in_production partial completed cancelled"`
	Factory string `form:"factory"`
}

// ItemResponse is one item in an order response
type ItemResponse struct {
	SKU               string `json:"sku"`
	Quantity          int    `json:"quantity"`
	DeliveredQuantity int    `json:"delivered_quantity"`
	Remaining         int    `json:"remaining"`
}

// OrderResponse is the API shape of a production order
type OrderResponse struct {
	ID          uuid.UUID      `json:"id"`
	OrderNumber string         `json:"order_number"`
	Factory     string         `json:"factory"`
	Destination string         `json:"destination"`
	ExpectedAt  *time.Time     `json:"expected_at,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	Status      string         `json:"status"`
	Items       []ItemResponse `json:"items"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Version     int            `json:"version"`
}

// ActivityResponse is one immutable activity log entry
type ActivityResponse struct {
	At        time.Time      `json:"at"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Note      string         `json:"note,omitempty"`
	Delivered map[string]int `json:"delivered,omitempty"`
}

// ToOrderResponse maps a domain order to its API shape
func ToOrderResponse(o *production.Order) *OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			SKU:               item.SKU,
			Quantity:          item.Quantity,
			DeliveredQuantity: item.DeliveredQuantity,
			Remaining:         item.Remaining(),
		}
	}
	return &OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Factory:     o.Factory,
		Destination: o.Destination,
		ExpectedAt:  o.ExpectedAt,
		Notes:       o.Notes,
		Status:      string(o.Status),
		Items:       items,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Version:     o.Version,
	}
}

// ToActivityResponses maps the activity log
func ToActivityResponses(entries []production.ActivityEntry) []ActivityResponse {
	out := make([]ActivityResponse, len(entries))
	for i, e := range entries {
		out[i] = ActivityResponse{
			At:        e.At,
			Actor:     e.Actor,
			Action:    e.Action,
			Note:      e.Note,
			Delivered: e.Delivered,
		}
	}
	return out
}
