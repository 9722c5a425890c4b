package inventory

import (
	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/shared"
)

// Aggregate type constant for snapshot-level events
const AggregateTypeInventory = "Inventory"

// EventTypeLowStockAlert is raised when a SKU drops under the configured
// threshold at a location
const EventTypeLowStockAlert = "LowStockAlert"

// LowStockAlertEvent signals a SKU under threshold. Deduplicated by the
// alert store before publication.
type LowStockAlertEvent struct {
	shared.BaseDomainEvent
	Location  string `json:"location"`
	SKU       string `json:"sku"`
	Available int    `json:"available"`
	Threshold int    `json:"threshold"`
}

// NewLowStockAlertEvent creates a new LowStockAlertEvent
func NewLowStockAlertEvent(location, sku string, available, threshold int) *LowStockAlertEvent {
	return &LowStockAlertEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlert, AggregateTypeInventory, uuid.New()),
		Location:        location,
		SKU:             sku,
		Available:       available,
		Threshold:       threshold,
	}
}

// EventType returns the event type name
func (e *LowStockAlertEvent) EventType() string {
	return EventTypeLowStockAlert
}
