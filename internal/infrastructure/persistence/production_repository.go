package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/stockpilot/backend/internal/domain/production"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
)

// ProductionDocumentKey is the blob key holding all production orders
const ProductionDocumentKey = "production_orders"

type productionDocument struct {
	Version int64                        `json:"version"`
	Orders  map[string]*production.Order `json:"orders"`
}

// BlobProductionRepository stores production orders as one JSON document
type BlobProductionRepository struct {
	docs *storage.DocumentStore
	mu   sync.Mutex
}

// NewBlobProductionRepository creates a blob-backed production order repository
func NewBlobProductionRepository(docs *storage.DocumentStore) *BlobProductionRepository {
	return &BlobProductionRepository{docs: docs}
}

func (r *BlobProductionRepository) load(ctx context.Context) (*productionDocument, error) {
	doc := &productionDocument{}
	err := r.docs.Load(ctx, ProductionDocumentKey, doc)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return &productionDocument{Orders: make(map[string]*production.Order)}, nil
		}
		return nil, err
	}
	if doc.Orders == nil {
		doc.Orders = make(map[string]*production.Order)
	}
	return doc, nil
}

// FindByID returns the order or shared.ErrNotFound
func (r *BlobProductionRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Order, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	o, ok := doc.Orders[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// FindAll returns orders matching the filter, newest first
func (r *BlobProductionRepository) FindAll(ctx context.Context, filter production.ListFilter) ([]production.Order, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]production.Order, 0, len(doc.Orders))
	for _, o := range doc.Orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.Factory != "" && o.Factory != filter.Factory {
			continue
		}
		out = append(out, *o)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Save upserts the order document
func (r *BlobProductionRepository) Save(ctx context.Context, o *production.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	doc.Orders[o.ID.String()] = o
	doc.Version++
	return r.docs.Save(ctx, ProductionDocumentKey, doc)
}

// Ensure BlobProductionRepository implements production.Repository
var _ production.Repository = (*BlobProductionRepository)(nil)
