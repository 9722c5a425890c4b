// Package incoming maintains the incoming-inventory projection document.
// Incremental updates load the current document first and never proceed on
// guessed state; the rebuild path recomputes everything in memory and
// performs exactly one save.
package incoming

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/incoming"
	"github.com/stockpilot/backend/internal/domain/transfer"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
	"github.com/stockpilot/backend/internal/infrastructure/telemetry"
)

// ProjectionDocumentKey is the blob key holding the projection
const ProjectionDocumentKey = "incoming_inventory"

// ProjectionService keeps the incoming-inventory projection in sync with
// transfer ledger mutations.
type ProjectionService struct {
	docs   *storage.DocumentStore
	logger *zap.Logger
}

// NewProjectionService creates a projection service
func NewProjectionService(docs *storage.DocumentStore, logger *zap.Logger) *ProjectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionService{docs: docs, logger: logger}
}

// Load returns the current projection. A missing document is an empty
// projection, not an error.
func (s *ProjectionService) Load(ctx context.Context) (*incoming.Cache, error) {
	cache := incoming.NewCache()
	err := s.docs.Load(ctx, ProjectionDocumentKey, cache)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return incoming.NewCache(), nil
		}
		return nil, err
	}
	if cache.Destinations == nil {
		cache.Destinations = make(map[string]map[string]*incoming.SKUIncoming)
	}
	return cache, nil
}

// ApplyDispatch adds the transfer's remaining quantities to the projection
// at the destination. Untracked transfer types are a no-op.
func (s *ProjectionService) ApplyDispatch(ctx context.Context, t *transfer.Transfer) error {
	if !t.Type.Tracked() {
		return nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "incoming_projection", "apply_dispatch",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, t.ID.String()))
	defer span.End()

	cache, err := s.Load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	cache.Add(t.Destination, t.Type.Mode(), remainingLines(t), incoming.DetailMeta{
		TransferID:        t.ID,
		Note:              t.Notes,
		CreatedAt:         t.CreatedAt,
		ExpectedArrivalAt: t.ETA,
	})

	return s.save(ctx, cache)
}

// ApplyDelivery subtracts the delivered per-SKU deltas from the transfer's
// projection contribution.
func (s *ProjectionService) ApplyDelivery(ctx context.Context, t *transfer.Transfer, delivered map[string]int) error {
	if !t.Type.Tracked() || len(delivered) == 0 {
		return nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "incoming_projection", "apply_delivery",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, t.ID.String()))
	defer span.End()

	cache, err := s.Load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	lines := make([]incoming.QuantityLine, 0, len(delivered))
	for sku, qty := range delivered {
		lines = append(lines, incoming.QuantityLine{SKU: sku, Quantity: qty})
	}

	missing := cache.Subtract(t.Destination, t.Type.Mode(), lines, t.ID)
	if len(missing) > 0 {
		s.logger.Warn("delivery subtraction skipped missing projection entries",
			zap.String("transfer_id", t.ID.String()),
			zap.String("destination", t.Destination),
			zap.Strings("skus", missing))
	}

	// restore totals==sum(details) before the document is written back
	cache.Normalize()
	return s.save(ctx, cache)
}

// ApplyCancel strips every contribution of the transfer from the projection,
// regardless of how much was already received.
func (s *ProjectionService) ApplyCancel(ctx context.Context, t *transfer.Transfer) error {
	if !t.Type.Tracked() {
		return nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "incoming_projection", "apply_cancel",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, t.ID.String()))
	defer span.End()

	cache, err := s.Load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	cache.RemoveTransfer(t.Destination, t.ID)
	return s.save(ctx, cache)
}

// Rebuild recomputes the projection from the full transfer ledger and
// replaces the stored document with one save.
func (s *ProjectionService) Rebuild(ctx context.Context, transfers []transfer.Transfer) (*incoming.Cache, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "incoming_projection", "rebuild",
		telemetry.WithAttribute("transfer_count", len(transfers)))
	defer span.End()

	refs := make([]*transfer.Transfer, len(transfers))
	for i := range transfers {
		refs[i] = &transfers[i]
	}

	cache := incoming.Rebuild(refs)
	if err := s.save(ctx, cache); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("incoming projection rebuilt",
		zap.Int("transfers", len(transfers)),
		zap.Int("destinations", len(cache.Destinations)))
	return cache, nil
}

func (s *ProjectionService) save(ctx context.Context, cache *incoming.Cache) error {
	return s.docs.Save(ctx, ProjectionDocumentKey, cache)
}

func remainingLines(t *transfer.Transfer) []incoming.QuantityLine {
	lines := make([]incoming.QuantityLine, 0, len(t.Items))
	for _, item := range t.Items {
		if r := item.Remaining(); r > 0 {
			lines = append(lines, incoming.QuantityLine{SKU: item.SKU, Quantity: r})
		}
	}
	return lines
}
