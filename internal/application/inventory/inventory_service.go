// Package inventory refreshes the live stock snapshot from the e-commerce
// platform and serves the cache document. Refresh is read-merge-write: only
// the snapshot and its bookkeeping fields change, sibling fields survive.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/infrastructure/cache"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
	"github.com/stockpilot/backend/internal/infrastructure/telemetry"
)

// CacheDocumentKey is the blob key holding the inventory cache document
const CacheDocumentKey = "inventory_cache"

// Service handles snapshot refresh, stock pushes and low-stock alerting
type Service struct {
	docs           *storage.DocumentStore
	platform       inventory.Platform
	dedup          cache.DedupStore
	eventPublisher shared.EventPublisher
	threshold      int
	dedupTTL       time.Duration
	logger         *zap.Logger
}

// NewService creates an inventory service
func NewService(
	docs *storage.DocumentStore,
	platform inventory.Platform,
	dedup cache.DedupStore,
	threshold int,
	dedupTTL time.Duration,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:      docs,
		platform:  platform,
		dedup:     dedup,
		threshold: threshold,
		dedupTTL:  dedupTTL,
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher for low-stock alert events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *Service) loadDocument(ctx context.Context) (*inventory.CacheDocument, error) {
	doc := &inventory.CacheDocument{}
	err := s.docs.Load(ctx, CacheDocumentKey, doc)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return &inventory.CacheDocument{Snapshot: make(inventory.Snapshot)}, nil
		}
		return nil, err
	}
	if doc.Snapshot == nil {
		doc.Snapshot = make(inventory.Snapshot)
	}
	return doc, nil
}

// View returns the current cache document
func (s *Service) View(ctx context.Context) (*SnapshotResponse, error) {
	doc, err := s.loadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return ToSnapshotResponse(doc), nil
}

// CurrentSnapshot returns the latest stored snapshot. Used by the transfer
// dispatch availability check.
func (s *Service) CurrentSnapshot(ctx context.Context) (inventory.Snapshot, error) {
	doc, err := s.loadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Snapshot, nil
}

// RefreshSnapshot fetches live levels from the platform and merges them into
// the cache document, preserving forecast, pending and dedup siblings. SKUs
// under the configured threshold raise deduplicated low-stock alerts.
func (s *Service) RefreshSnapshot(ctx context.Context, actor string) (*SnapshotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "refresh_snapshot")
	defer span.End()

	snapshot, err := s.platform.FetchStockLevels(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	doc, err := s.loadDocument(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	doc.Snapshot = snapshot
	doc.LastUpdated = time.Now()
	doc.RefreshedBy = actor
	doc.Version++

	if err := s.docs.Save(ctx, CacheDocumentKey, doc); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.raiseLowStockAlerts(ctx, snapshot)

	s.logger.Info("inventory snapshot refreshed",
		zap.String("actor", actor),
		zap.Int("locations", len(snapshot)))
	return ToSnapshotResponse(doc), nil
}

// PushStockUpdates performs a best-effort per-item batch update against the
// platform. Individual failures never fail the batch.
func (s *Service) PushStockUpdates(ctx context.Context, req *StockUpdateRequest) (*inventory.SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "push_stock_updates",
		telemetry.WithAttribute(telemetry.SpanAttrLocation, req.Location),
		telemetry.WithAttribute("update_count", len(req.Updates)))
	defer span.End()

	updates := make([]inventory.StockUpdate, len(req.Updates))
	for i, line := range req.Updates {
		updates[i] = inventory.StockUpdate{SKU: line.SKU, Available: line.Available}
	}

	result, err := s.platform.UpdateStock(ctx, req.Location, updates)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if result.FailedCount > 0 {
		s.logger.Warn("stock push completed with failures",
			zap.String("location", req.Location),
			zap.Int("failed", result.FailedCount),
			zap.Int("succeeded", result.SuccessCount))
	}
	return result, nil
}

func (s *Service) raiseLowStockAlerts(ctx context.Context, snapshot inventory.Snapshot) {
	if s.eventPublisher == nil || s.threshold <= 0 {
		return
	}

	for location, levels := range snapshot {
		for sku, level := range levels {
			if level.Available >= s.threshold {
				continue
			}

			key := fmt.Sprintf("%s:%s", location, sku)
			if s.dedup != nil {
				first, err := s.dedup.MarkAlerted(ctx, key, s.dedupTTL)
				if err != nil {
					s.logger.Warn("alert dedup check failed, suppressing alert",
						zap.String("key", key), zap.Error(err))
					continue
				}
				if !first {
					continue
				}
			}

			event := inventory.NewLowStockAlertEvent(location, sku, level.Available, s.threshold)
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish low stock alert",
					zap.String("key", key), zap.Error(err))
			}
		}
	}
}
