package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
	infracache "github.com/stockpilot/backend/internal/infrastructure/cache"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
)

type stubPlatform struct {
	snapshot inventory.Snapshot
	fetchErr error

	updatedLocation string
	updated         []inventory.StockUpdate
	updateResult    *inventory.SyncResult
	updateErr       error
}

func (p *stubPlatform) FetchStockLevels(context.Context) (inventory.Snapshot, error) {
	return p.snapshot, p.fetchErr
}

func (p *stubPlatform) UpdateStock(_ context.Context, location string, updates []inventory.StockUpdate) (*inventory.SyncResult, error) {
	p.updatedLocation = location
	p.updated = updates
	return p.updateResult, p.updateErr
}

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func sampleSnapshot() inventory.Snapshot {
	return inventory.Snapshot{
		"Warehouse A": {
			"SKU-1": {SKU: "SKU-1", Available: 120, OnHand: 130, Committed: 10},
			"SKU-2": {SKU: "SKU-2", Available: 3, OnHand: 3},
		},
	}
}

func newService(t *testing.T, platform *stubPlatform) (*Service, *storage.DocumentStore, *capturePublisher) {
	t.Helper()
	docs := storage.NewDocumentStore(storage.NewMemoryStore(), zap.NewNop())
	dedup := infracache.NewInMemoryDedupStore()
	t.Cleanup(func() { _ = dedup.Close() })

	svc := NewService(docs, platform, dedup, 10, time.Hour, zap.NewNop())
	publisher := &capturePublisher{}
	svc.SetEventPublisher(publisher)
	return svc, docs, publisher
}

func TestRefreshSnapshotStoresLevels(t *testing.T) {
	platform := &stubPlatform{snapshot: sampleSnapshot()}
	svc, _, _ := newService(t, platform)

	resp, err := svc.RefreshSnapshot(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.RefreshedBy)
	assert.Equal(t, int64(1), resp.Version)
	assert.Equal(t, 120, resp.Snapshot.AvailableAt("Warehouse A", "SKU-1"))
}

func TestRefreshSnapshotPreservesSiblings(t *testing.T) {
	platform := &stubPlatform{snapshot: sampleSnapshot()}
	svc, docs, _ := newService(t, platform)
	ctx := context.Background()

	// seed a document with forecast and pending data written by other flows
	seed := &inventory.CacheDocument{
		Snapshot: inventory.Snapshot{},
		Forecast: inventory.Forecast{
			DailyVelocity: map[string]decimal.Decimal{"SKU-1": decimal.NewFromFloat(4.5)},
		},
		POPending: map[string]int{"SKU-1": 200},
		Version:   7,
	}
	require.NoError(t, docs.Save(ctx, CacheDocumentKey, seed))

	resp, err := svc.RefreshSnapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.Version)
	assert.Equal(t, 200, resp.POPending["SKU-1"])
	assert.True(t, decimal.NewFromFloat(4.5).Equal(resp.Velocity["SKU-1"]))
}

func TestRefreshSnapshotPlatformError(t *testing.T) {
	platform := &stubPlatform{fetchErr: errors.New("shopify down")}
	svc, _, _ := newService(t, platform)

	_, err := svc.RefreshSnapshot(context.Background(), "alice")
	assert.Error(t, err)
}

func TestLowStockAlertsDeduplicated(t *testing.T) {
	platform := &stubPlatform{snapshot: sampleSnapshot()}
	svc, _, publisher := newService(t, platform)
	ctx := context.Background()

	_, err := svc.RefreshSnapshot(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	alert, ok := publisher.events[0].(*inventory.LowStockAlertEvent)
	require.True(t, ok)
	assert.Equal(t, "SKU-2", alert.SKU)
	assert.Equal(t, "Warehouse A", alert.Location)
	assert.Equal(t, 3, alert.Available)
	assert.Equal(t, 10, alert.Threshold)

	// a second refresh within the TTL must not alert again
	_, err = svc.RefreshSnapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, publisher.events, 1)
}

func TestCurrentSnapshotEmptyStore(t *testing.T) {
	svc, _, _ := newService(t, &stubPlatform{})

	snapshot, err := svc.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestPushStockUpdates(t *testing.T) {
	platform := &stubPlatform{
		updateResult: &inventory.SyncResult{
			Status:       inventory.SyncStatusPartial,
			TotalCount:   2,
			SuccessCount: 1,
			FailedCount:  1,
			FailedItems:  []inventory.SyncFailure{{SKU: "SKU-2", ErrorMessage: "rate limited"}},
		},
	}
	svc, _, _ := newService(t, platform)

	result, err := svc.PushStockUpdates(context.Background(), &StockUpdateRequest{
		Location: "Warehouse A",
		Updates: []StockUpdateLine{
			{SKU: "SKU-1", Available: 50},
			{SKU: "SKU-2", Available: 60},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.SyncStatusPartial, result.Status)
	assert.Equal(t, "Warehouse A", platform.updatedLocation)
	require.Len(t, platform.updated, 2)
	assert.Equal(t, 50, platform.updated[0].Available)
}
