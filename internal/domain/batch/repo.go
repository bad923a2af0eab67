package batch

import (
	"context"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
)

// ListFilter narrows batch listings.
type ListFilter struct {
	domain.ListFilter

	// ProductID restricts to one product's batches
	ProductID *id.ID

	// ExpiredOnly restricts to batches past their expiry date
	ExpiredOnly bool
}

// Repository defines the interface for Batch persistence.
// All methods are scoped to the owning user.
type Repository interface {
	// Create inserts a new batch
	Create(ctx context.Context, b *Batch) error

	// GetByID retrieves the owner's batch by ID
	GetByID(ctx context.Context, ownerID, batchID id.ID) (*Batch, error)

	// Update modifies an existing batch (with optimistic locking)
	Update(ctx context.Context, ownerID id.ID, b *Batch) error

	// Delete removes the owner's batch
	Delete(ctx context.Context, ownerID, batchID id.ID) error

	// List retrieves the owner's batches joined to product names
	List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*WithProduct], error)
}
