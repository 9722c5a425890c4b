package incoming

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockpilot/backend/internal/domain/transfer"
)

// TransferDetail is one transfer's remaining contribution to a destination/SKU
type TransferDetail struct {
	TransferID        uuid.UUID  `json:"transfer_id"`
	Quantity          int        `json:"quantity"`
	Note              string     `json:"note,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpectedArrivalAt *time.Time `json:"expected_arrival_at,omitempty"`
}

// SKUIncoming aggregates the in-flight quantity for one SKU at a destination.
// Invariant: InboundAir == sum(AirTransfers[].Quantity) and likewise for sea.
type SKUIncoming struct {
	InboundAir   int              `json:"inbound_air"`
	InboundSea   int              `json:"inbound_sea"`
	AirTransfers []TransferDetail `json:"air_transfers,omitempty"`
	SeaTransfers []TransferDetail `json:"sea_transfers,omitempty"`
}

// Empty reports whether the entry carries no incoming quantity at all
func (s *SKUIncoming) Empty() bool {
	return s.InboundAir <= 0 && s.InboundSea <= 0 &&
		len(s.AirTransfers) == 0 && len(s.SeaTransfers) == 0
}

// Cache is the incoming-inventory projection: destination -> SKU -> incoming.
// It is derived from the transfer ledger and fully rebuildable; entries are
// created lazily and pruned once both directional totals reach zero.
type Cache struct {
	Destinations map[string]map[string]*SKUIncoming `json:"destinations"`
}

// NewCache creates an empty projection
func NewCache() *Cache {
	return &Cache{Destinations: make(map[string]map[string]*SKUIncoming)}
}

// QuantityLine is a SKU/quantity pair applied to the projection
type QuantityLine struct {
	SKU      string
	Quantity int
}

// DetailMeta carries the per-transfer fields recorded on each detail entry
type DetailMeta struct {
	TransferID        uuid.UUID
	Note              string
	CreatedAt         time.Time
	ExpectedArrivalAt *time.Time
}

func (c *Cache) ensure(destination, sku string) *SKUIncoming {
	if c.Destinations == nil {
		c.Destinations = make(map[string]map[string]*SKUIncoming)
	}
	dest, ok := c.Destinations[destination]
	if !ok {
		dest = make(map[string]*SKUIncoming)
		c.Destinations[destination] = dest
	}
	entry, ok := dest[sku]
	if !ok {
		entry = &SKUIncoming{}
		dest[sku] = entry
	}
	return entry
}

// Add records in-flight quantities for a dispatched transfer. Entries are
// created lazily; one detail record is appended per line.
func (c *Cache) Add(destination string, mode transfer.ShipmentMode, lines []QuantityLine, meta DetailMeta) {
	if mode == transfer.ModeNone {
		return
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		entry := c.ensure(destination, line.SKU)
		detail := TransferDetail{
			TransferID:        meta.TransferID,
			Quantity:          line.Quantity,
			Note:              meta.Note,
			CreatedAt:         meta.CreatedAt,
			ExpectedArrivalAt: meta.ExpectedArrivalAt,
		}
		switch mode {
		case transfer.ModeAir:
			entry.InboundAir += line.Quantity
			entry.AirTransfers = append(entry.AirTransfers, detail)
		case transfer.ModeSea:
			entry.InboundSea += line.Quantity
			entry.SeaTransfers = append(entry.SeaTransfers, detail)
		}
	}
}

// Subtract removes delivered quantities from the matching transfer's detail
// records, flooring totals at zero and pruning empty entries. Lines whose
// destination, SKU or detail record is already gone are returned as missing;
// they are a no-op, never an error.
func (c *Cache) Subtract(destination string, mode transfer.ShipmentMode, lines []QuantityLine, transferID uuid.UUID) []string {
	var missing []string
	if mode == transfer.ModeNone {
		return missing
	}
	dest := c.Destinations[destination]
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		entry, ok := dest[line.SKU]
		if !ok {
			missing = append(missing, line.SKU)
			continue
		}
		var details *[]TransferDetail
		var total *int
		switch mode {
		case transfer.ModeAir:
			details = &entry.AirTransfers
			total = &entry.InboundAir
		case transfer.ModeSea:
			details = &entry.SeaTransfers
			total = &entry.InboundSea
		}

		// The total only drops by what the detail actually held, so a
		// delta larger than the detail cannot draw down sibling
		// transfers' contributions on the same SKU.
		found := false
		removed := 0
		for i := range *details {
			if (*details)[i].TransferID != transferID {
				continue
			}
			found = true
			removed = line.Quantity
			if (*details)[i].Quantity < removed {
				removed = (*details)[i].Quantity
			}
			(*details)[i].Quantity -= line.Quantity
			if (*details)[i].Quantity <= 0 {
				*details = append((*details)[:i], (*details)[i+1:]...)
			}
			break
		}
		if !found {
			missing = append(missing, line.SKU)
			continue
		}

		*total -= removed
		if *total < 0 {
			*total = 0
		}
		c.pruneSKU(destination, line.SKU)
	}
	return missing
}

// RemoveTransfer strips every contribution of the transfer at the destination
// from both directional lists, decrementing totals by the removed quantities
// and pruning emptied entries. Used on cancellation.
func (c *Cache) RemoveTransfer(destination string, transferID uuid.UUID) {
	dest := c.Destinations[destination]
	if dest == nil {
		return
	}
	for sku, entry := range dest {
		entry.AirTransfers, entry.InboundAir = removeDetails(entry.AirTransfers, entry.InboundAir, transferID)
		entry.SeaTransfers, entry.InboundSea = removeDetails(entry.SeaTransfers, entry.InboundSea, transferID)
		c.pruneSKU(destination, sku)
	}
}

func removeDetails(details []TransferDetail, total int, transferID uuid.UUID) ([]TransferDetail, int) {
	kept := details[:0]
	for _, d := range details {
		if d.TransferID == transferID {
			total -= d.Quantity
			continue
		}
		kept = append(kept, d)
	}
	if total < 0 {
		total = 0
	}
	return kept, total
}

func (c *Cache) pruneSKU(destination, sku string) {
	dest := c.Destinations[destination]
	if dest == nil {
		return
	}
	entry := dest[sku]
	if entry != nil && entry.Empty() {
		delete(dest, sku)
	}
	if len(dest) == 0 {
		delete(c.Destinations, destination)
	}
}

// Normalize restores the totals==sum(details) invariant across the whole
// projection, dropping zero/negative details and pruning empty entries
func (c *Cache) Normalize() {
	for destination, dest := range c.Destinations {
		for sku, entry := range dest {
			entry.AirTransfers, entry.InboundAir = normalizeDetails(entry.AirTransfers)
			entry.SeaTransfers, entry.InboundSea = normalizeDetails(entry.SeaTransfers)
			c.pruneSKU(destination, sku)
		}
	}
}

func normalizeDetails(details []TransferDetail) ([]TransferDetail, int) {
	kept := details[:0]
	total := 0
	for _, d := range details {
		if d.Quantity <= 0 {
			continue
		}
		total += d.Quantity
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return nil, 0
	}
	return kept, total
}

// HasTransfer reports whether any detail record anywhere references the
// transfer
func (c *Cache) HasTransfer(transferID uuid.UUID) bool {
	for _, dest := range c.Destinations {
		for _, entry := range dest {
			for _, d := range entry.AirTransfers {
				if d.TransferID == transferID {
					return true
				}
			}
			for _, d := range entry.SeaTransfers {
				if d.TransferID == transferID {
					return true
				}
			}
		}
	}
	return false
}

// Get returns the entry for a destination/SKU, or nil when absent
func (c *Cache) Get(destination, sku string) *SKUIncoming {
	dest := c.Destinations[destination]
	if dest == nil {
		return nil
	}
	return dest[sku]
}
