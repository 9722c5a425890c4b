package production

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows production order list queries
type ListFilter struct {
	Status  *Status
	Factory string
}

// Repository is the persistence contract for production orders
type Repository interface {
	// FindByID returns the order or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindAll returns orders matching the filter, newest first
	FindAll(ctx context.Context, filter ListFilter) ([]Order, error)
	// Save upserts the order
	Save(ctx context.Context, o *Order) error
}
