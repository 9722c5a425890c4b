package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/domain/production"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/transfer"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// Dispatcher turns domain events into Slack messages. Delivery is best
// effort: events are queued to a bounded channel and posted by a background
// worker, a full queue drops the event and a failed post is only logged.
// Nothing here ever propagates an error back into the publishing operation.
type Dispatcher struct {
	sender      Sender
	logger      *zap.Logger
	queue       chan Message
	sendTimeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	drained   chan struct{}
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the pending-message queue capacity
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Message, n)
		}
	}
}

// WithSendTimeout bounds each individual webhook post
func WithSendTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.sendTimeout = t
		}
	}
}

// NewDispatcher creates a dispatcher over the given sender
func NewDispatcher(sender Sender, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		sender:      sender,
		logger:      logger,
		queue:       make(chan Message, defaultQueueSize),
		sendTimeout: defaultSendTimeout,
		done:        make(chan struct{}),
		drained:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EventTypes returns the event types the dispatcher notifies about
func (d *Dispatcher) EventTypes() []string {
	return []string{
		transfer.EventTypeTransferInTransit,
		transfer.EventTypeTransferDelivery,
		transfer.EventTypeTransferCancelled,
		production.EventTypeOrderCompleted,
		inventory.EventTypeLowStockAlert,
	}
}

// Handle formats the event and enqueues it. Never returns an error for
// delivery problems; a full queue drops the message with a warning.
func (d *Dispatcher) Handle(_ context.Context, event shared.DomainEvent) error {
	text, ok := d.format(event)
	if !ok {
		return nil
	}

	select {
	case d.queue <- Message{Text: text}:
	default:
		d.logger.Warn("notification queue full, dropping message",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()))
	}
	return nil
}

// Start launches the background worker
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.worker()
	})
}

// Stop signals the worker and waits for queued messages to drain, up to the
// context deadline.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	select {
	case <-d.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer close(d.drained)
	for {
		select {
		case msg := <-d.queue:
			d.post(msg)
		case <-d.done:
			// drain whatever was queued before the stop signal
			for {
				select {
				case msg := <-d.queue:
					d.post(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) post(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Warn("failed to send notification", zap.Error(err))
	}
}

func (d *Dispatcher) format(event shared.DomainEvent) (string, bool) {
	switch e := event.(type) {
	case *transfer.TransferInTransitEvent:
		var b strings.Builder
		fmt.Fprintf(&b, ":truck: Transfer dispatched: %s -> %s (%s)", e.Origin, e.Destination, e.Type)
		if e.ETA != nil {
			fmt.Fprintf(&b, ", ETA %s", e.ETA.Format("2006-01-02"))
		}
		for _, item := range e.Items {
			fmt.Fprintf(&b, "\n• %s x%d", item.SKU, item.Quantity)
		}
		return b.String(), true

	case *transfer.TransferDeliveryEvent:
		var b strings.Builder
		if e.Status == transfer.StatusDelivered {
			fmt.Fprintf(&b, ":package: Transfer fully delivered at %s", e.Destination)
		} else {
			fmt.Fprintf(&b, ":package: Partial delivery at %s", e.Destination)
		}
		for sku, qty := range e.Delivered {
			fmt.Fprintf(&b, "\n• %s x%d", sku, qty)
		}
		return b.String(), true

	case *transfer.TransferCancelledEvent:
		text := fmt.Sprintf(":x: Transfer cancelled: %s -> %s", e.Origin, e.Destination)
		if e.Reason != "" {
			text += " (" + e.Reason + ")"
		}
		return text, true

	case *production.OrderCompletedEvent:
		return fmt.Sprintf(":white_check_mark: Production order %s fully delivered to %s", e.OrderNumber, e.Destination), true

	case *inventory.LowStockAlertEvent:
		return fmt.Sprintf(":warning: Low stock: %s at %s has %d available (threshold %d)",
			e.SKU, e.Location, e.Available, e.Threshold), true
	}
	return "", false
}

// Ensure Dispatcher implements shared.EventHandler
var _ shared.EventHandler = (*Dispatcher)(nil)
