package inventory

import (
	"context"
	"errors"
	"time"
)

// Platform errors
var (
	ErrPlatformNotConfigured   = errors.New("platform is not configured")
	ErrPlatformUnavailable     = errors.New("platform is unavailable")
	ErrPlatformRequestFailed   = errors.New("platform request failed")
	ErrPlatformInvalidResponse = errors.New("platform returned an invalid response")
	ErrUnknownSKU              = errors.New("sku is not known to the platform")
)

// SyncStatus is the outcome of a batch stock push
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncFailure is one failed item in a batch stock push
type SyncFailure struct {
	SKU          string `json:"sku"`
	ErrorMessage string `json:"error_message"`
}

// SyncResult reports per-item outcomes of a batch stock push. The batch is
// never atomic: successes stand even when siblings fail.
type SyncResult struct {
	Status       SyncStatus    `json:"status"`
	TotalCount   int           `json:"total_count"`
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	FailedItems  []SyncFailure `json:"failed_items,omitempty"`
	SyncedAt     time.Time     `json:"synced_at"`
}

// Finalize derives the overall status from the counters
func (r *SyncResult) Finalize() {
	switch {
	case r.FailedCount == 0:
		r.Status = SyncStatusSuccess
	case r.SuccessCount > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
}

// StockUpdate sets the available quantity for one SKU at a location
type StockUpdate struct {
	SKU       string `json:"sku"`
	Available int    `json:"available"`
}

// Platform is the e-commerce platform port: a read of live stock levels and
// a best-effort per-item batch update
type Platform interface {
	// FetchStockLevels pulls the live snapshot for every location
	FetchStockLevels(ctx context.Context) (Snapshot, error)
	// UpdateStock pushes available quantities at a location, reporting
	// per-item outcomes
	UpdateStock(ctx context.Context, location string, updates []StockUpdate) (*SyncResult, error)
}
