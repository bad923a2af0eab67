package announcement

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
)

// ProductState is the slice of a product the scan needs.
type ProductState struct {
	ID       id.ID  `db:"id"`
	Name     string `db:"product_name"`
	Quantity int64  `db:"quantity"`
}

// Repository defines announcement persistence and the scan's read model.
type Repository interface {
	// ListActive retrieves the owner's active announcements, newest first
	ListActive(ctx context.Context, ownerID id.ID) ([]*Announcement, error)

	// HasActive reports whether an active announcement of the given type
	// exists for the product
	HasActive(ctx context.Context, ownerID, productID id.ID, typ Type) (bool, error)

	// Insert creates a new announcement row
	Insert(ctx context.Context, a *Announcement) error

	// Dismiss deactivates the owner's announcement and refreshes its
	// updated_at. Returns the number of rows affected; dismissing an
	// already-dismissed or missing row affects zero rows and is not an error.
	Dismiss(ctx context.Context, ownerID, announcementID id.ID) (int64, error)

	// ListProducts retrieves the scan's product snapshot for the owner
	ListProducts(ctx context.Context, ownerID id.ID) ([]ProductState, error)

	// HasExpiredBatch reports whether the product has any batch with an
	// expiry date before now
	HasExpiredBatch(ctx context.Context, ownerID, productID id.ID, now time.Time) (bool, error)
}
