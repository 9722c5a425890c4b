package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockpilot/backend/internal/domain/inventory"
)

// StockUpdateRequest pushes available quantities to the platform
type StockUpdateRequest struct {
	Location string            `json:"location" binding:"required"`
	Updates  []StockUpdateLine `json:"updates" binding:"required,min=1,dive"`
}

// StockUpdateLine is one SKU update in a push
type StockUpdateLine struct {
	SKU       string `json:"sku" binding:"required,sku"`
	Available int    `json:"available" binding:"min=0"`
}

// SnapshotResponse is the API view of the cache document
type SnapshotResponse struct {
	Snapshot    inventory.Snapshot         `json:"snapshot"`
	Velocity    map[string]decimal.Decimal `json:"daily_velocity,omitempty"`
	POPending   map[string]int             `json:"po_pending,omitempty"`
	LastUpdated time.Time                  `json:"last_updated"`
	RefreshedBy string                     `json:"refreshed_by"`
	Version     int64                      `json:"version"`
}

// ToSnapshotResponse maps the cache document to its API shape
func ToSnapshotResponse(doc *inventory.CacheDocument) *SnapshotResponse {
	return &SnapshotResponse{
		Snapshot:    doc.Snapshot,
		Velocity:    doc.Forecast.DailyVelocity,
		POPending:   doc.POPending,
		LastUpdated: doc.LastUpdated,
		RefreshedBy: doc.RefreshedBy,
		Version:     doc.Version,
	}
}
