package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/shared"
)

const (
	defaultLoadAttempts = 3
	defaultLoadBackoff  = 200 * time.Millisecond
)

// DocumentStore wraps a BlobStore with JSON marshalling and the one resilient
// load used everywhere: a read is retried before any mutation proceeds, a
// write is attempted exactly once. A missing key is not an outage and is
// never retried.
type DocumentStore struct {
	store    BlobStore
	logger   *zap.Logger
	attempts int
	backoff  time.Duration
}

// DocumentStoreOption is a functional option for configuring DocumentStore
type DocumentStoreOption func(*DocumentStore)

// WithLoadRetry overrides the load attempt count and backoff
func WithLoadRetry(attempts int, backoff time.Duration) DocumentStoreOption {
	return func(d *DocumentStore) {
		if attempts > 0 {
			d.attempts = attempts
		}
		d.backoff = backoff
	}
}

// NewDocumentStore creates a DocumentStore over the given blob backend
func NewDocumentStore(store BlobStore, logger *zap.Logger, opts ...DocumentStoreOption) *DocumentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DocumentStore{
		store:    store,
		logger:   logger,
		attempts: defaultLoadAttempts,
		backoff:  defaultLoadBackoff,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load reads and unmarshals the document for the key into out. Transient
// failures are retried up to the configured attempts with fixed backoff;
// exhaustion surfaces STORE_UNAVAILABLE so callers never proceed on guessed
// state. ErrBlobNotFound passes through untouched.
func (d *DocumentStore) Load(ctx context.Context, key string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		data, err := d.store.Load(ctx, key)
		if err == nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to decode document %s: %w", key, err)
			}
			return nil
		}
		if errors.Is(err, ErrBlobNotFound) {
			return ErrBlobNotFound
		}
		lastErr = err
		d.logger.Warn("Document load failed",
			zap.String("key", key),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < d.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.backoff):
			}
		}
	}
	d.logger.Error("Document load exhausted retries",
		zap.String("key", key),
		zap.Int("attempts", d.attempts),
		zap.Error(lastErr))
	return shared.ErrStoreUnavailable
}

// Save marshals and writes the document for the key. Never retried; a racing
// writer can still win, which is why every document carries its own version
// counter.
func (d *DocumentStore) Save(ctx context.Context, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", key, err)
	}
	if err := d.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}
