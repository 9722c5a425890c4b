package production

import (
	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// Aggregate type constant for production orders
const AggregateTypeProductionOrder = "ProductionOrder"

// Production order event type constants
const (
	EventTypeOrderCreated   = "ProductionOrderCreated"
	EventTypeOrderCompleted = "ProductionOrderCompleted"
	EventTypeOrderCancelled = "ProductionOrderCancelled"
)

// OrderCreatedEvent is raised when a production order is placed
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Factory     string    `json:"factory"`
	Destination string    `json:"destination"`
	CreatedBy   string    `json:"created_by"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeProductionOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Factory:         o.Factory,
		Destination:     o.Destination,
		CreatedBy:       o.CreatedBy,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderCompletedEvent is raised when the last outstanding quantity is delivered
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Destination string    `json:"destination"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeProductionOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Destination:     o.Destination,
	}
}

// EventType returns the event type name
func (e *OrderCompletedEvent) EventType() string {
	return EventTypeOrderCompleted
}

// OrderCancelledEvent is raised when a production order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason,omitempty"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeProductionOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}
