// Package persistence implements the domain repository contracts on top of
// the durable blob store. Each collection lives in a single versioned
// document; mutations do a read-modify-write under a process-local lock.
package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/transfer"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
)

// TransferDocumentKey is the blob key holding the transfer ledger
const TransferDocumentKey = "transfers"

// transferDocument is the persisted shape of the whole ledger
type transferDocument struct {
	Version   int64                         `json:"version"`
	Transfers map[string]*transfer.Transfer `json:"transfers"`
}

// BlobTransferRepository stores the transfer ledger as one JSON document
type BlobTransferRepository struct {
	docs *storage.DocumentStore
	mu   sync.Mutex
}

// NewBlobTransferRepository creates a blob-backed transfer repository
func NewBlobTransferRepository(docs *storage.DocumentStore) *BlobTransferRepository {
	return &BlobTransferRepository{docs: docs}
}

func (r *BlobTransferRepository) load(ctx context.Context) (*transferDocument, error) {
	doc := &transferDocument{}
	err := r.docs.Load(ctx, TransferDocumentKey, doc)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return &transferDocument{Transfers: make(map[string]*transfer.Transfer)}, nil
		}
		return nil, err
	}
	if doc.Transfers == nil {
		doc.Transfers = make(map[string]*transfer.Transfer)
	}
	return doc, nil
}

// FindByID returns the transfer or shared.ErrNotFound
func (r *BlobTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.Transfer, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := doc.Transfers[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

// FindAll returns transfers matching the filter, newest first
func (r *BlobTransferRepository) FindAll(ctx context.Context, filter transfer.ListFilter) ([]transfer.Transfer, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transfer.Transfer, 0, len(doc.Transfers))
	for _, t := range doc.Transfers {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Origin != "" && t.Origin != filter.Origin {
			continue
		}
		if filter.Destination != "" && t.Destination != filter.Destination {
			continue
		}
		out = append(out, *t)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Save upserts the transfer into the ledger document
func (r *BlobTransferRepository) Save(ctx context.Context, t *transfer.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	doc.Transfers[t.ID.String()] = t
	doc.Version++
	return r.docs.Save(ctx, TransferDocumentKey, doc)
}

// Ensure BlobTransferRepository implements transfer.Repository
var _ transfer.Repository = (*BlobTransferRepository)(nil)
