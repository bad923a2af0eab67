// Package batch provides stock batches: dated quantity lots of a product,
// independently trackable for expiry.
package batch

import (
	"context"
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
)

// Batch is a quantity lot of one product.
// OwnerID duplicates the parent product's owner so every query can be
// scoped without a join.
type Batch struct {
	domain.Owned

	// ProductID references the parent product
	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity on hand in this batch
	Quantity int64 `db:"quantity" json:"quantity"`

	// ExpiredDate is the expiry date, nil when the batch does not expire
	ExpiredDate *time.Time `db:"expired_date" json:"expiredDate,omitempty"`
}

// NewBatch creates a new Batch for a product.
func NewBatch(ownerID, productID id.ID, quantity int64, expiredDate *time.Time) *Batch {
	return &Batch{
		Owned:       domain.NewOwned(ownerID),
		ProductID:   productID,
		Quantity:    quantity,
		ExpiredDate: expiredDate,
	}
}

// Validate checks business rules before persistence.
func (b *Batch) Validate(ctx context.Context) error {
	if id.IsNil(b.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if b.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	return nil
}

// IsExpired reports whether the batch has passed its expiry date.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiredDate != nil && b.ExpiredDate.Before(now)
}

// WithProduct is a batch joined to its product's display fields.
type WithProduct struct {
	Batch

	ProductName string `db:"product_name" json:"productName"`
}
