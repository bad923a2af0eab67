package stock

import (
	"context"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
)

// Repository defines the interface for Product persistence.
// Every method is scoped to the owning user; a product belonging to a
// different owner behaves exactly like a missing one.
type Repository interface {
	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves the owner's product by ID
	GetByID(ctx context.Context, ownerID, productID id.ID) (*Product, error)

	// Update modifies an existing product (with optimistic locking)
	Update(ctx context.Context, ownerID id.ID, product *Product) error

	// Delete removes the owner's product and its dependent rows
	Delete(ctx context.Context, ownerID, productID id.ID) error

	// List retrieves the owner's products with filtering and pagination
	List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// Exists checks if the owner has a product with the given ID
	Exists(ctx context.Context, ownerID, productID id.ID) (bool, error)

	// AddQuantity atomically shifts the product's aggregate quantity by delta.
	// Must be called inside a transaction that also updates the batch.
	AddQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error
}
