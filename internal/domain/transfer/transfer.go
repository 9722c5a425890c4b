package transfer

import (
	"fmt"
	"time"

	"github.com/stockpilot/backend/internal/domain/shared"
)

// Type represents how a transfer moves between locations
type Type string

const (
	TypeAirExpress Type = "air_express"
	TypeAirSlow    Type = "air_slow"
	TypeSea        Type = "sea"
	TypeImmediate  Type = "immediate"
)

// IsValid checks if the type is a valid transfer Type
func (t Type) IsValid() bool {
	switch t {
	case TypeAirExpress, TypeAirSlow, TypeSea, TypeImmediate:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// ShipmentMode is the direction bucket a transfer contributes to in the
// incoming projection (air or sea). Immediate transfers have no mode.
type ShipmentMode string

const (
	ModeAir  ShipmentMode = "air"
	ModeSea  ShipmentMode = "sea"
	ModeNone ShipmentMode = ""
)

// Mode returns the shipment mode for the transfer type
func (t Type) Mode() ShipmentMode {
	switch t {
	case TypeAirExpress, TypeAirSlow:
		return ModeAir
	case TypeSea:
		return ModeSea
	}
	return ModeNone
}

// Tracked reports whether transfers of this type appear in the incoming
// projection. Immediate transfers move instantly and are never tracked.
func (t Type) Tracked() bool {
	return t.Mode() != ModeNone
}

// Status represents the lifecycle status of a transfer
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInTransit Status = "in_transit"
	StatusPartial   Status = "partial"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInTransit, StatusPartial, StatusDelivered, StatusCancelled:
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
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusInTransit || target == StatusCancelled
	case StatusInTransit:
		return target == StatusPartial || target == StatusDelivered || target == StatusCancelled
	case StatusPartial:
		return target == StatusPartial || target == StatusDelivered || target == StatusCancelled
	case StatusDelivered, StatusCancelled:
		return false
	}
	return false
}

// Item represents a line item in a transfer
type Item struct {
	SKU              string `json:"sku"`
	Quantity         int    `json:"quantity"`
	ReceivedQuantity int    `json:"received_quantity"`
}

// Remaining returns the quantity still in flight for this item
func (i *Item) Remaining() int {
	r := i.Quantity - i.ReceivedQuantity
	if r < 0 {
		return 0
	}
	return r
}

// FullyReceived reports whether the item has been received in full
func (i *Item) FullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

// DeriveStatus derives the post-dispatch lifecycle status from item receipts.
// It is the single derivation used by every mutation site: delivered iff
// every item is fully received, partial iff any item has receipts, otherwise
// in_transit.
func DeriveStatus(items []Item) Status {
	if len(items) == 0 {
		return StatusInTransit
	}
	all := true
	any := false
	for i := range items {
		if items[i].ReceivedQuantity > 0 {
			any = true
		}
		if !items[i].FullyReceived() {
			all = false
		}
	}
	if all {
		return StatusDelivered
	}
	if any {
		return StatusPartial
	}
	return StatusInTransit
}

// RestockedItem describes stock returned to the origin when a transfer is
// cancelled. Supplied by the caller, never derived here.
type RestockedItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Transfer represents a shipment of SKU quantities between two locations.
// It is the aggregate root of the transfer ledger; all mutations go through
// the defined transitions.
type Transfer struct {
	shared.BaseAggregateRoot
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	Type           Type       `json:"transfer_type"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	ETA            *time.Time `json:"eta,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         Status     `json:"status"`
	Items          []Item     `json:"items"`
	CreatedBy      string     `json:"created_by"`
	CreatedByEmail string     `json:"created_by_email"`
}

// NewTransfer creates a new draft transfer
func NewTransfer(origin, destination string, transferType Type, items []Item, createdBy, createdByEmail string) (*Transfer, error) {
	if origin == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Origin cannot be empty")
	}
	if destination == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Destination cannot be empty")
	}
	if origin == destination {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Origin and destination must differ")
	}
	if !transferType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid transfer type: %s", transferType))
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Transfer must have at least one item")
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

	t := &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Origin:            origin,
		Destination:       destination,
		Type:              transferType,
		Status:            StatusDraft,
		Items:             normalized,
		CreatedBy:         createdBy,
		CreatedByEmail:    createdByEmail,
	}

	t.AddDomainEvent(NewTransferCreatedEvent(t))

	return t, nil
}

// SetShippingDetails updates the carrier, tracking number, ETA and notes
func (t *Transfer) SetShippingDetails(carrier, trackingNumber string, eta *time.Time, notes string) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit a %s transfer", t.Status))
	}
	t.Carrier = carrier
	t.TrackingNumber = trackingNumber
	t.ETA = eta
	t.Notes = notes
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// ReplaceItems replaces the item set, preserving recorded receipts by SKU.
// Replacement is a quantity edit, never an implicit receipt reset. Changing
// the SKU set while any receipts exist requires explicit confirmation.
func (t *Transfer) ReplaceItems(items []Item, confirmReceiptChange bool) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit items of a %s transfer", t.Status))
	}
	if len(items) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Transfer must have at least one item")
	}

	existing := make(map[string]int, len(t.Items))
	hasReceipts := false
	for i := range t.Items {
		existing[t.Items[i].SKU] = t.Items[i].ReceivedQuantity
		if t.Items[i].ReceivedQuantity > 0 {
			hasReceipts = true
		}
	}

	seen := make(map[string]bool, len(items))
	replacement := make([]Item, 0, len(items))
	for _, item := range items {
		if item.SKU == "" {
			return shared.NewDomainError("VALIDATION_ERROR", "Item SKU cannot be empty")
		}
		if item.Quantity <= 0 {
			return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Item quantity must be positive for SKU %s", item.SKU))
		}
		if seen[item.SKU] {
			return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Duplicate SKU in items: %s", item.SKU))
		}
		seen[item.SKU] = true

		received := existing[item.SKU]
		if received > item.Quantity {
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("New quantity %d for SKU %s is below already received %d", item.Quantity, item.SKU, received))
		}
		replacement = append(replacement, Item{SKU: item.SKU, Quantity: item.Quantity, ReceivedQuantity: received})
	}

	if hasReceipts && !confirmReceiptChange && skuSetChanged(t.Items, replacement) {
		return shared.NewDomainError("ITEM_SET_CHANGED_WITH_RECEIPTS",
			"Item SKUs changed while receipts exist; confirmation required")
	}

	t.Items = replacement
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

func skuSetChanged(before, after []Item) bool {
	if len(before) != len(after) {
		return true
	}
	set := make(map[string]bool, len(before))
	for i := range before {
		set[before[i].SKU] = true
	}
	for i := range after {
		if !set[after[i].SKU] {
			return true
		}
	}
	return false
}

// Dispatch transitions the transfer from draft to in_transit. The
// stock-availability check at the origin is the caller's responsibility.
func (t *Transfer) Dispatch() error {
	if !t.Status.CanTransitionTo(StatusInTransit) || t.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition from %s to in_transit", t.Status))
	}

	t.Status = StatusInTransit
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferInTransitEvent(t))

	return nil
}

// RecordDelivery applies per-SKU delivered deltas (not absolutes) and
// recomputes the status. Increments are capped at each item's quantity; the
// returned map holds the deltas actually applied, which callers subtract from
// the incoming projection. A delivery event is emitted only on first entry
// into partial or delivered.
func (t *Transfer) RecordDelivery(deltas map[string]int) (map[string]int, error) {
	if t.Status != StatusInTransit && t.Status != StatusPartial {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot log deliveries on a %s transfer", t.Status))
	}
	if len(deltas) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "No delivery quantities supplied")
	}

	bySKU := make(map[string]*Item, len(t.Items))
	for i := range t.Items {
		bySKU[t.Items[i].SKU] = &t.Items[i]
	}
	for sku, delta := range deltas {
		if delta <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Delivered quantity must be positive for SKU %s", sku))
		}
		if _, ok := bySKU[sku]; !ok {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("SKU %s is not part of this transfer", sku))
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
		item.ReceivedQuantity += capped
		applied[sku] = capped
	}

	previous := t.Status
	t.Status = DeriveStatus(t.Items)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	if t.Status != previous && (t.Status == StatusPartial || t.Status == StatusDelivered) {
		t.AddDomainEvent(NewTransferDeliveryEvent(t, applied))
	}

	return applied, nil
}

// Cancel transitions the transfer to cancelled from any non-terminal state.
// The restocked items are reported by the caller, not derived here.
func (t *Transfer) Cancel(reason string, restocked []RestockedItem) error {
	if !t.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s transfer", t.Status))
	}

	t.Status = StatusCancelled
	if reason != "" {
		// Keep whatever notes the transfer already carries.
		if t.Notes != "" {
			t.Notes += "\nCancelled: " + reason
		} else {
			t.Notes = "Cancelled: " + reason
		}
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferCancelledEvent(t, reason, restocked))

	return nil
}

// RemainingBySKU returns the in-flight quantity per SKU, skipping items that
// have been received in full
func (t *Transfer) RemainingBySKU() map[string]int {
	remaining := make(map[string]int, len(t.Items))
	for i := range t.Items {
		if r := t.Items[i].Remaining(); r > 0 {
			remaining[t.Items[i].SKU] = r
		}
	}
	return remaining
}
