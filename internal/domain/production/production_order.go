package production

import (
	"fmt"
	"time"

	"github.com/stockpilot/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a production order
type Status string

const (
	StatusInProduction Status = "in_production"
	StatusPartial      Status = "partial"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusInProduction, StatusPartial, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Item is an ordered SKU with its delivered-so-far counter
type Item struct {
	SKU               string `json:"sku"`
	Quantity          int    `json:"quantity"`
	DeliveredQuantity int    `json:"delivered_quantity"`
}

// Remaining returns the quantity still owed by the factory
func (i *Item) Remaining() int {
	r := i.Quantity - i.DeliveredQuantity
	if r < 0 {
		return 0
	}
	return r
}

// FullyDelivered reports whether the item has been delivered in full
func (i *Item) FullyDelivered() bool {
	return i.DeliveredQuantity >= i.Quantity
}

// DeriveStatus derives the order status from item deliveries: completed iff
// every item is delivered in full, partial iff any item has deliveries,
// otherwise in_production
func DeriveStatus(items []Item) Status {
	if len(items) == 0 {
		return StatusInProduction
	}
	all := true
	any := false
	for i := range items {
		if items[i].DeliveredQuantity > 0 {
			any = true
		}
		if !items[i].FullyDelivered() {
			all = false
		}
	}
	if all {
		return StatusCompleted
	}
	if any {
		return StatusPartial
	}
	return StatusInProduction
}

// ActivityEntry is one line of the order's append-only activity log
type ActivityEntry struct {
	At        time.Time      `json:"at"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Note      string         `json:"note,omitempty"`
	Delivered map[string]int `json:"delivered,omitempty"`
}

// Order represents a batch of SKUs ordered from a factory. Deliveries are
// logged as per-SKU deltas; status is always derived from the items.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber    string          `json:"order_number"`
	Factory        string          `json:"factory"`
	Destination    string          `json:"destination"`
	ExpectedAt     *time.Time      `json:"expected_at,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Status         Status          `json:"status"`
	Items          []Item          `json:"items"`
	Activity       []ActivityEntry `json:"activity"`
	CreatedBy      string          `json:"created_by"`
	CreatedByEmail string          `json:"created_by_email"`
}

// NewOrder creates a new production order in in_production status
func NewOrder(orderNumber, factory, destination string, items []Item, expectedAt *time.Time, notes, createdBy, createdByEmail string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order number cannot be empty")
	}
	if factory == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Factory cannot be empty")
	}
	if destination == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Destination cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Production order must have at least one item")
	}
	seen := make(map[string]bool, len(items))
	normalized := make([]Item, 0, len(items))
	for _, item := range items {
		if item.SKU == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Item SKU cannot be empty")
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Item quantity must be positive for SKU %s", item.SKU))
		}
		if seen[item.SKU] {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Duplicate SKU in items: %s", item.SKU))
		}
		seen[item.SKU] = true
		normalized = append(normalized, Item{SKU: item.SKU, Quantity: item.Quantity})
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Factory:           factory,
		Destination:       destination,
		ExpectedAt:        expectedAt,
		Notes:             notes,
		Status:            StatusInProduction,
		Items:             normalized,
		CreatedBy:         createdBy,
		CreatedByEmail:    createdByEmail,
	}
	o.logActivity(createdBy, "created", notes, nil)

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

func (o *Order) logActivity(actor, action, note string, delivered map[string]int) {
	o.Activity = append(o.Activity, ActivityEntry{
		At:        time.Now(),
		Actor:     actor,
		Action:    action,
		Note:      note,
		Delivered: delivered,
	})
}

// UpdateDetails edits the order's factory, destination, expected date and notes
func (o *Order) UpdateDetails(factory, destination string, expectedAt *time.Time, notes, actor string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit a %s production order", o.Status))
	}
	if factory != "" {
		o.Factory = factory
	}
	if destination != "" {
		o.Destination = destination
	}
	o.ExpectedAt = expectedAt
	o.Notes = notes
	o.logActivity(actor, "updated", notes, nil)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// LogDelivery applies per-SKU delivered deltas, capping each at the item's
// remaining quantity. The applied map is returned so callers can raise
// warehouse stock by exactly what was accepted. Completion emits an event.
func (o *Order) LogDelivery(deltas map[string]int, actor, note string) (map[string]int, error) {
	if o.Status != StatusInProduction && o.Status != StatusPartial {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot log deliveries on a %s production order", o.Status))
	}
	if len(deltas) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "No delivery quantities supplied")
	}

	bySKU := make(map[string]*Item, len(o.Items))
	for i := range o.Items {
		bySKU[o.Items[i].SKU] = &o.Items[i]
	}
	for sku, delta := range deltas {
		if delta <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Delivered quantity must be positive for SKU %s", sku))
		}
		if _, ok := bySKU[sku]; !ok {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("SKU %s is not part of this order", sku))
		}
	}

	applied := make(map[string]int, len(deltas))
	for sku, delta := range deltas {
		item := bySKU[sku]
		capped := delta
		if remaining := item.Remaining(); capped > remaining {
			capped = remaining
		}
		if capped == 0 {
			continue
		}
		item.DeliveredQuantity += capped
		applied[sku] = capped
	}

	previous := o.Status
	o.Status = DeriveStatus(o.Items)
	o.logActivity(actor, "delivery", note, applied)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if o.Status == StatusCompleted && previous != StatusCompleted {
		o.AddDomainEvent(NewOrderCompletedEvent(o))
	}

	return applied, nil
}

// Cancel transitions the order to cancelled from any non-terminal state
func (o *Order) Cancel(reason, actor string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s production order", o.Status))
	}

	o.Status = StatusCancelled
	o.logActivity(actor, "cancelled", reason, nil)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// RemainingBySKU returns the undelivered quantity per SKU
func (o *Order) RemainingBySKU() map[string]int {
	remaining := make(map[string]int, len(o.Items))
	for i := range o.Items {
		if r := o.Items[i].Remaining(); r > 0 {
			remaining[o.Items[i].SKU] = r
		}
	}
	return remaining
}
