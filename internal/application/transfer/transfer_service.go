// Package transfer orchestrates the transfer ledger: persistence, the
// incoming projection side effects, and event publication.
package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/transfer"
	"github.com/stockpilot/backend/internal/infrastructure/telemetry"
)

// ProjectionApplier receives ledger mutations relevant to the incoming
// projection. Implemented by the incoming ProjectionService.
type ProjectionApplier interface {
	ApplyDispatch(ctx context.Context, t *transfer.Transfer) error
	ApplyDelivery(ctx context.Context, t *transfer.Transfer, delivered map[string]int) error
	ApplyCancel(ctx context.Context, t *transfer.Transfer) error
}

// SnapshotProvider supplies the latest stock snapshot for the dispatch
// availability check.
type SnapshotProvider interface {
	CurrentSnapshot(ctx context.Context) (inventory.Snapshot, error)
}

// Service handles transfer ledger operations
type Service struct {
	repo            transfer.Repository
	projection      ProjectionApplier
	snapshots       SnapshotProvider
	eventPublisher  shared.EventPublisher
	strictStockMode bool
	logger          *zap.Logger
}

// NewService creates a transfer service
func NewService(
	repo transfer.Repository,
	projection ProjectionApplier,
	snapshots SnapshotProvider,
	strictStockMode bool,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:            repo,
		projection:      projection,
		snapshots:       snapshots,
		strictStockMode: strictStockMode,
		logger:          logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a draft transfer. Drafts have no projection side effect.
func (s *Service) Create(ctx context.Context, req *CreateTransferRequest, actor, actorEmail string) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "create")
	defer span.End()

	t, err := transfer.NewTransfer(req.Origin, req.Destination, transfer.Type(req.Type),
		toDomainItems(req.Items), actor, actorEmail)
	if err != nil {
		return nil, err
	}
	if req.Carrier != "" || req.TrackingNumber != "" || req.ETA != nil || req.Notes != "" {
		if err := t.SetShippingDetails(req.Carrier, req.TrackingNumber, req.ETA, req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, t)

	telemetry.SetAttributes(span, telemetry.SpanAttrTransferID, t.ID.String())
	return ToTransferResponse(t), nil
}

// Get returns one transfer
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTransferResponse(t), nil
}

// List returns transfers matching the query, newest first
func (s *Service) List(ctx context.Context, query *ListQuery) ([]TransferResponse, error) {
	filter := transfer.ListFilter{
		Origin:      query.Origin,
		Destination: query.Destination,
	}
	if query.Status != "" {
		status := transfer.Status(query.Status)
		filter.Status = &status
	}
	if query.Type != "" {
		typ := transfer.Type(query.Type)
		filter.Type = &typ
	}

	transfers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = *ToTransferResponse(&transfers[i])
	}
	return out, nil
}

// Update edits shipping details and optionally replaces the item set.
// Replacing items never resets receipts; changing the SKU set while receipts
// exist requires explicit confirmation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateTransferRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "update",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, id.String()))
	defer span.End()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	carrier := t.Carrier
	if req.Carrier != nil {
		carrier = *req.Carrier
	}
	tracking := t.TrackingNumber
	if req.TrackingNumber != nil {
		tracking = *req.TrackingNumber
	}
	eta := t.ETA
	if req.ClearETA {
		eta = nil
	} else if req.ETA != nil {
		eta = req.ETA
	}
	notes := t.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := t.SetShippingDetails(carrier, tracking, eta, notes); err != nil {
		return nil, err
	}

	if req.Items != nil {
		if err := t.ReplaceItems(toDomainItems(req.Items), req.ConfirmReceiptChange); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return ToTransferResponse(t), nil
}

// Dispatch moves a draft transfer in transit. Stock availability at the
// origin is checked against the latest snapshot: strict mode rejects
// shortfalls, permissive mode logs them. Tracked types are added to the
// incoming projection at the destination.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "dispatch",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, id.String()))
	defer span.End()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkStockAvailability(ctx, t); err != nil {
		return nil, err
	}

	if err := t.Dispatch(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.projection.ApplyDispatch(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, t)

	return ToTransferResponse(t), nil
}

// RecordDelivery logs per-SKU delivered deltas and subtracts the applied
// amounts from the incoming projection.
func (s *Service) RecordDelivery(ctx context.Context, id uuid.UUID, req *DeliveryRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "record_delivery",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, id.String()))
	defer span.End()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applied, err := t.RecordDelivery(req.Deltas)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.projection.ApplyDelivery(ctx, t, applied); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, t)

	return ToTransferResponse(t), nil
}

// Cancel cancels a non-terminal transfer and strips its projection
// contribution regardless of received amounts.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *CancelTransferRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrTransferID, id.String()))
	defer span.End()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasDispatched := t.Status != transfer.StatusDraft
	if err := t.Cancel(req.Reason, req.Restocked); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if wasDispatched {
		if err := s.projection.ApplyCancel(ctx, t); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	s.publishEvents(ctx, t)

	return ToTransferResponse(t), nil
}

func (s *Service) checkStockAvailability(ctx context.Context, t *transfer.Transfer) error {
	if s.snapshots == nil {
		return nil
	}

	snapshot, err := s.snapshots.CurrentSnapshot(ctx)
	if err != nil {
		if s.strictStockMode {
			return err
		}
		s.logger.Warn("stock availability check skipped, snapshot unavailable",
			zap.String("transfer_id", t.ID.String()), zap.Error(err))
		return nil
	}

	var short []string
	for _, item := range t.Items {
		available := snapshot.AvailableAt(t.Origin, item.SKU)
		if available < item.Quantity {
			short = append(short, fmt.Sprintf("%s (need %d, have %d)", item.SKU, item.Quantity, available))
		}
	}
	if len(short) == 0 {
		return nil
	}

	if s.strictStockMode {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock at %s: %s", t.Origin, strings.Join(short, ", ")))
	}
	s.logger.Warn("dispatching despite insufficient stock at origin",
		zap.String("transfer_id", t.ID.String()),
		zap.String("origin", t.Origin),
		zap.Strings("shortfalls", short))
	return nil
}

func (s *Service) publishEvents(ctx context.Context, t *transfer.Transfer) {
	if s.eventPublisher == nil {
		return
	}
	events := t.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish transfer events",
			zap.String("transfer_id", t.ID.String()), zap.Error(err))
	}
	t.ClearDomainEvents()
}
