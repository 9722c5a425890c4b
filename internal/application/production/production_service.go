// Package production orchestrates production order tracking.
package production

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/production"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/infrastructure/telemetry"
)

// Service handles production order operations
type Service struct {
	repo           production.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a production order service
func NewService(repo production.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// SetEventPublisher sets the publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places a production order
func (s *Service) Create(ctx context.Context, req *CreateOrderRequest, actor, actorEmail string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production", "create",
		telemetry.WithAttribute(telemetry.SpanAttrOrderNumber, req.OrderNumber))
	defer span.End()

	items := make([]production.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = production.Item{SKU: item.SKU, Quantity: item.Quantity}
	}

	o, err := production.NewOrder(req.OrderNumber, req.Factory, req.Destination,
		items, req.ExpectedAt, req.Notes, actor, actorEmail)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, o); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, o)

	return ToOrderResponse(o), nil
}

// Get returns one order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// List returns orders matching the query, newest first
func (s *Service) List(ctx context.Context, query *ListQuery) ([]OrderResponse, error) {
	filter := production.ListFilter{Factory: query.Factory}
	if query.Status != "" {
		status := production.Status(query.Status)
		filter.Status = &status
	}

	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = *ToOrderResponse(&orders[i])
	}
	return out, nil
}

// Update edits order details
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateOrderRequest, actor string) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.UpdateDetails(req.Factory, req.Destination, req.ExpectedAt, req.Notes, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// LogDelivery records per-SKU delivered deltas from the factory
func (s *Service) LogDelivery(ctx context.Context, id uuid.UUID, req *DeliveryRequest, actor string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production", "log_delivery",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, id.String()))
	defer span.End()

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := o.LogDelivery(req.Deltas, actor, req.Note); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, o)

	return ToOrderResponse(o), nil
}

// Cancel cancels a non-terminal order
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *CancelOrderRequest, actor string) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(req.Reason, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	return ToOrderResponse(o), nil
}

// Activity returns the immutable activity log for an order
func (s *Service) Activity(ctx context.Context, id uuid.UUID) ([]ActivityResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToActivityResponses(o.Activity), nil
}

func (s *Service) publishEvents(ctx context.Context, o *production.Order) {
	if s.eventPublisher == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish production order events",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}
	o.ClearDomainEvents()
}
