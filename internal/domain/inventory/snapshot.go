// Package inventory holds the live stock snapshot model and the e-commerce
// platform port it is fetched through.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel is the live quantity breakdown for one SKU at one location
type StockLevel struct {
	SKU       string `json:"sku"`
	Available int    `json:"available"`
	OnHand    int    `json:"on_hand"`
	Committed int    `json:"committed"`
	Incoming  int    `json:"incoming"`
}

// Snapshot is the live stock state per location, keyed by location then SKU
type Snapshot map[string]map[string]StockLevel

// AvailableAt returns the available quantity for a SKU at a location, zero
// when unknown
func (s Snapshot) AvailableAt(location, sku string) int {
	if levels, ok := s[location]; ok {
		return levels[sku].Available
	}
	return 0
}

// Forecast carries per-SKU daily sales velocity used by the dashboard
type Forecast struct {
	DailyVelocity map[string]decimal.Decimal `json:"daily_velocity,omitempty"`
	ComputedAt    *time.Time                 `json:"computed_at,omitempty"`
}

// CacheDocument is the persisted envelope around the snapshot. Sibling fields
// must survive partial updates: every writer reads the whole document, edits
// its own fields and writes the whole document back.
type CacheDocument struct {
	Snapshot    Snapshot       `json:"snapshot"`
	Forecast    Forecast       `json:"forecast"`
	POPending   map[string]int `json:"po_pending,omitempty"`
	AlertedSKUs map[string]time.Time `json:"alerted_skus,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
	RefreshedBy string         `json:"refreshed_by"`
	Version     int64          `json:"version"`
}
