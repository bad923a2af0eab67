package movement

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
)

// ListFilter narrows movement listings.
type ListFilter struct {
	// Type restricts to IN or OUT movements
	Type *Type

	// BatchID restricts to one batch's ledger
	BatchID *id.ID

	// ProductID restricts to movements of one product (through its batches)
	ProductID *id.ID

	// From/To bound the movement date (inclusive)
	From *time.Time
	To   *time.Time

	// Pagination
	Limit  int
	Offset int
}

// Repository defines read access to the movement ledger.
type Repository interface {
	// GetByID retrieves one of the owner's movements
	GetByID(ctx context.Context, ownerID, movementID id.ID) (*WithProduct, error)

	// List retrieves the owner's movements joined to product names,
	// newest first
	List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*WithProduct], error)
}
