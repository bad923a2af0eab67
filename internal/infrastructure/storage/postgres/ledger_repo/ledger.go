// Package ledger_repo provides the PostgreSQL implementation of the
// atomic stock ledger. All methods run against the transaction carried in
// ctx; the row lock taken by GetBatchForUpdate is what serializes
// concurrent adjustments on the same batch.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txm *postgres.TxManager
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{txm: txm}
}

// GetBatchForUpdate locks the owner's batch row and returns its state.
func (r *LedgerRepo) GetBatchForUpdate(ctx context.Context, ownerID, batchID id.ID) (*ledger.LockedBatch, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, product_id, owner_id, quantity
		FROM stock_batches
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`

	var locked ledger.LockedBatch
	err := q.QueryRow(ctx, query, batchID, ownerID).Scan(
		&locked.ID, &locked.ProductID, &locked.OwnerID, &locked.Quantity,
	)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("stock_batches", batchID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("lock batch: %w", err)
	}

	return &locked, nil
}

// SetBatchQuantity writes the batch's new quantity.
func (r *LedgerRepo) SetBatchQuantity(ctx context.Context, batchID id.ID, quantity int64) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE stock_batches
		SET quantity = $2, version = version + 1, updated_at = now()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, batchID, quantity)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock_batches", batchID.String())
	}

	return nil
}

// InsertMovement appends one immutable movement row.
func (r *LedgerRepo) InsertMovement(ctx context.Context, m *movement.Movement) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO stock_movements (
			id, owner_id, batch_id, movement_type, quantity,
			movement_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		m.ID, m.OwnerID, m.BatchID, m.Type, m.Quantity,
		m.MovementDate, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// AddProductQuantity shifts a product's aggregate quantity by delta.
func (r *LedgerRepo) AddProductQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE stock
		SET quantity = quantity + $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
	`

	result, err := q.Exec(ctx, query, productID, ownerID, delta)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock", productID.String())
	}

	return nil
}

// InsertProduct inserts a new product row.
func (r *LedgerRepo) InsertProduct(ctx context.Context, p *stock.Product) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO stock (
			id, owner_id, product_name, product_type, price, quantity,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Type, p.Price, p.Quantity,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// InsertBatch inserts a new batch row.
func (r *LedgerRepo) InsertBatch(ctx context.Context, b *batch.Batch) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO stock_batches (
			id, owner_id, product_id, quantity, expired_date,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		b.ID, b.OwnerID, b.ProductID, b.Quantity, b.ExpiredDate,
		b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	return nil
}

// InsertPricePoint appends a price history observation.
func (r *LedgerRepo) InsertPricePoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO price_history (id, owner_id, product_id, price, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query, id.New(), ownerID, productID, price, at)
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}

	return nil
}
