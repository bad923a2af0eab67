// Package stock_repo provides PostgreSQL implementations for the product
// and batch repositories.
package stock_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ stock.Repository = (*ProductRepo)(nil)

// ProductRepo implements stock.Repository on the "stock" table.
type ProductRepo struct {
	*postgres.OwnedRepo[*stock.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	base := postgres.NewOwnedRepo(
		txm,
		"stock",
		postgres.ExtractDBColumns[stock.Product](),
		[]string{"product_name"},
		func() *stock.Product { return &stock.Product{} },
	)
	return &ProductRepo{OwnedRepo: base}
}

// AddQuantity atomically shifts the product's aggregate quantity by delta.
// The quantity CHECK constraint backstops negative totals; the ledger
// service rejects them before they reach this point.
func (r *ProductRepo) AddQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error {
	q := r.Builder().
		Update(r.TableName()).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"owner_id": ownerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build quantity update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock", productID.String())
	}

	return nil
}
