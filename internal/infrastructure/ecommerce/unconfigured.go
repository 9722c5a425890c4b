package ecommerce

import (
	"context"

	"github.com/stockpilot/backend/internal/domain/inventory"
)

var _ inventory.Platform = (*UnconfiguredPlatform)(nil)

// UnconfiguredPlatform is the platform port used when no Shopify credentials
// are configured. Every call fails with ErrPlatformNotConfigured so the rest
// of the dashboard keeps working without a shop.
type UnconfiguredPlatform struct{}

// NewUnconfiguredPlatform creates the stand-in platform
func NewUnconfiguredPlatform() *UnconfiguredPlatform {
	return &UnconfiguredPlatform{}
}

func (p *UnconfiguredPlatform) FetchStockLevels(_ context.Context) (inventory.Snapshot, error) {
	return nil, inventory.ErrPlatformNotConfigured
}

func (p *UnconfiguredPlatform) UpdateStock(_ context.Context, _ string, _ []inventory.StockUpdate) (*inventory.SyncResult, error) {
	return nil, inventory.ErrPlatformNotConfigured
}
