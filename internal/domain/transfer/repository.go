package transfer

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows transfer list queries
type ListFilter struct {
	Status      *Status
	Type        *Type
	Origin      string
	Destination string
}

// Repository is the persistence contract for the transfer ledger
type Repository interface {
	// FindByID returns the transfer or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	// FindAll returns transfers matching the filter, newest first
	FindAll(ctx context.Context, filter ListFilter) ([]Transfer, error)
	// Save upserts the transfer into the ledger
	Save(ctx context.Context, t *Transfer) error
}
