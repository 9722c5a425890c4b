package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// Aggregate type constant for Transfer
const AggregateTypeTransfer = "Transfer"

// Transfer event type constants
const (
	EventTypeTransferCreated   = "TransferCreated"
	EventTypeTransferInTransit = "TransferInTransit"
	EventTypeTransferDelivery  = "TransferDelivery"
	EventTypeTransferCancelled = "TransferCancelled"
)

// TransferCreatedEvent is raised when a draft transfer is created
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferID  uuid.UUID `json:"transfer_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Type        Type      `json:"transfer_type"`
	CreatedBy   string    `json:"created_by"`
}

// NewTransferCreatedEvent creates a new TransferCreatedEvent
func NewTransferCreatedEvent(t *Transfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, AggregateTypeTransfer, t.ID),
		TransferID:      t.ID,
		Origin:          t.Origin,
		Destination:     t.Destination,
		Type:            t.Type,
		CreatedBy:       t.CreatedBy,
	}
}

// EventType returns the event type name
func (e *TransferCreatedEvent) EventType() string {
	return EventTypeTransferCreated
}

// TransferInTransitEvent is raised when a transfer is dispatched
type TransferInTransitEvent struct {
	shared.BaseDomainEvent
	TransferID  uuid.UUID  `json:"transfer_id"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Type        Type       `json:"transfer_type"`
	Carrier     string     `json:"carrier,omitempty"`
	ETA         *time.Time `json:"eta,omitempty"`
	Items       []Item     `json:"items"`
	CreatedBy   string     `json:"created_by"`
}

// NewTransferInTransitEvent creates a new TransferInTransitEvent
func NewTransferInTransitEvent(t *Transfer) *TransferInTransitEvent {
	items := make([]Item, len(t.Items))
	copy(items, t.Items)
	return &TransferInTransitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferInTransit, AggregateTypeTransfer, t.ID),
		TransferID:      t.ID,
		Origin:          t.Origin,
		Destination:     t.Destination,
		Type:            t.Type,
		Carrier:         t.Carrier,
		ETA:             t.ETA,
		Items:           items,
		CreatedBy:       t.CreatedBy,
	}
}

// EventType returns the event type name
func (e *TransferInTransitEvent) EventType() string {
	return EventTypeTransferInTransit
}

// TransferDeliveryEvent is raised when a transfer first becomes partial or
// delivered. Repeat deliveries in the same status do not raise it again.
type TransferDeliveryEvent struct {
	shared.BaseDomainEvent
	TransferID  uuid.UUID      `json:"transfer_id"`
	Destination string         `json:"destination"`
	Status      Status         `json:"status"`
	Delivered   map[string]int `json:"delivered"`
}

// NewTransferDeliveryEvent creates a new TransferDeliveryEvent
func NewTransferDeliveryEvent(t *Transfer, delivered map[string]int) *TransferDeliveryEvent {
	return &TransferDeliveryEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferDelivery, AggregateTypeTransfer, t.ID),
		TransferID:      t.ID,
		Destination:     t.Destination,
		Status:          t.Status,
		Delivered:       delivered,
	}
}

// EventType returns the event type name
func (e *TransferDeliveryEvent) EventType() string {
	return EventTypeTransferDelivery
}

// TransferCancelledEvent is raised when a transfer is cancelled
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferID  uuid.UUID       `json:"transfer_id"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Reason      string          `json:"reason,omitempty"`
	Restocked   []RestockedItem `json:"restocked,omitempty"`
}

// NewTransferCancelledEvent creates a new TransferCancelledEvent
func NewTransferCancelledEvent(t *Transfer, reason string, restocked []RestockedItem) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, AggregateTypeTransfer, t.ID),
		TransferID:      t.ID,
		Origin:          t.Origin,
		Destination:     t.Destination,
		Reason:          reason,
		Restocked:       restocked,
	}
}

// EventType returns the event type name
func (e *TransferCancelledEvent) EventType() string {
	return EventTypeTransferCancelled
}
