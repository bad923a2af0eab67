// Package ledger owns the atomic stock operations: IN/OUT adjustments and
// combined product+batch creation. Everything that must not tear under
// concurrency lives here, guarded by row locks inside one transaction.
package ledger

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
)

// LockedBatch is the row snapshot returned by GetBatchForUpdate while the
// row lock is held.
type LockedBatch struct {
	ID        id.ID `db:"id"`
	ProductID id.ID `db:"product_id"`
	OwnerID   id.ID `db:"owner_id"`
	Quantity  int64 `db:"quantity"`
}

// Repository defines the persistence operations the ledger composes into
// transactions. Implementations must join the transaction carried in ctx.
type Repository interface {
	// GetBatchForUpdate locks the owner's batch row (SELECT ... FOR UPDATE)
	// and returns its current state. Must be called inside a transaction.
	GetBatchForUpdate(ctx context.Context, ownerID, batchID id.ID) (*LockedBatch, error)

	// SetBatchQuantity writes the batch's new quantity
	SetBatchQuantity(ctx context.Context, batchID id.ID, quantity int64) error

	// InsertMovement appends one immutable movement row
	InsertMovement(ctx context.Context, m *movement.Movement) error

	// AddProductQuantity shifts a product's aggregate quantity by delta
	AddProductQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error

	// InsertProduct inserts a new product row
	InsertProduct(ctx context.Context, p *stock.Product) error

	// InsertBatch inserts a new batch row
	InsertBatch(ctx context.Context, b *batch.Batch) error

	// InsertPricePoint appends a price history observation
	InsertPricePoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error
}
