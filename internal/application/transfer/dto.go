package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockpilot/backend/internal/domain/transfer"
)

// ItemRequest is one SKU line in a create/update request
type ItemRequest struct {
	SKU      string `json:"sku" binding:"required,sku"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateTransferRequest creates a draft transfer
type CreateTransferRequest struct {
	Origin         string        `json:"origin" binding:"required"`
	Destination    string        `json:"destination" binding:"required"`
	Type           string        `json:"transfer_type" binding:"required,oneof=air_express air_slow sea immediate"`
	Carrier        string        `json:"carrier"`
	TrackingNumber string        `json:"tracking_number"`
	ETA            *time.Time    `json:"eta"`
	Notes          string        `json:"notes"`
	Items          []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateTransferRequest edits fields of an existing transfer. Nil pointer
// fields and a nil Items leave the current values untouched; ClearETA drops
// the ETA entirely, which a nil ETA alone cannot express.
type UpdateTransferRequest struct {
	Carrier              *string       `json:"carrier"`
	TrackingNumber       *string       `json:"tracking_number"`
	ETA                  *time.Time    `json:"eta"`
	ClearETA             bool          `json:"clear_eta"`
	Notes                *string       `json:"notes"`
	Items                []ItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	ConfirmReceiptChange bool          `json:"confirm_receipt_change"`
}

// DeliveryRequest logs per-SKU delivered deltas
type DeliveryRequest struct {
	Deltas map[string]int `json:"deltas" binding:"required,min=1"`
}

// CancelTransferRequest cancels a transfer
type CancelTransferRequest struct {
	Reason    string                   `json:"reason"`
	Restocked []transfer.RestockedItem `json:"restocked"`
}

// ListQuery narrows transfer listings
type ListQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=draft in_transit partial delivered cancelled"`
	Type        string `form:"transfer_type" binding:"omitempty,oneof=air_express air_slow sea immediate"`
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
}

// ItemResponse is one item in a transfer response
type ItemResponse struct {
	SKU              string `json:"sku"`
	Quantity         int    `json:"quantity"`
	ReceivedQuantity int    `json:"received_quantity"`
	Remaining        int    `json:"remaining"`
}

// TransferResponse is the API shape of a transfer
type TransferResponse struct {
	ID             uuid.UUID      `json:"id"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	Type           string         `json:"transfer_type"`
	Carrier        string         `json:"carrier,omitempty"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	ETA            *time.Time     `json:"eta,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Status         string         `json:"status"`
	Items          []ItemResponse `json:"items"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Version        int            `json:"version"`
}

// ToTransferResponse maps a domain transfer to its API shape
func ToTransferResponse(t *transfer.Transfer) *TransferResponse {
	items := make([]ItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = ItemResponse{
			SKU:              item.SKU,
			Quantity:         item.Quantity,
			ReceivedQuantity: item.ReceivedQuantity,
			Remaining:        item.Remaining(),
		}
	}
	return &TransferResponse{
		ID:             t.ID,
		Origin:         t.Origin,
		Destination:    t.Destination,
		Type:           string(t.Type),
		Carrier:        t.Carrier,
		TrackingNumber: t.TrackingNumber,
		ETA:            t.ETA,
		Notes:          t.Notes,
		Status:         string(t.Status),
		Items:          items,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Version:        t.Version,
	}
}

func toDomainItems(items []ItemRequest) []transfer.Item {
	out := make([]transfer.Item, len(items))
	for i, item := range items {
		out[i] = transfer.Item{SKU: item.SKU, Quantity: item.Quantity}
	}
	return out
}
