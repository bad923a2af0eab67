package stock_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ batch.Repository = (*BatchRepo)(nil)

// batchJoinCols are the columns selected when joining batches to products.
var batchJoinCols = []string{
	"b.id", "b.owner_id", "b.version", "b.created_at", "b.updated_at",
	"b.product_id", "b.quantity", "b.expired_date",
	"s.product_name",
}

// BatchRepo implements batch.Repository on the "stock_batches" table.
type BatchRepo struct {
	*postgres.OwnedRepo[*batch.Batch]
}

// NewBatchRepo creates a new batch repository.
func NewBatchRepo(txm *postgres.TxManager) *BatchRepo {
	base := postgres.NewOwnedRepo(
		txm,
		"stock_batches",
		postgres.ExtractDBColumns[batch.Batch](),
		nil,
		func() *batch.Batch { return &batch.Batch{} },
	)
	return &BatchRepo{OwnedRepo: base}
}

// List retrieves the owner's batches joined to product names.
func (r *BatchRepo) List(ctx context.Context, ownerID id.ID, filter batch.ListFilter) (domain.ListResult[*batch.WithProduct], error) {
	result := domain.ListResult[*batch.WithProduct]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(batchJoinCols...).
		From("stock_batches b").
		Join("stock s ON s.id = b.product_id").
		Where(squirrel.Eq{"b.owner_id": ownerID})

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"b.product_id": *filter.ProductID})
	}

	if filter.ExpiredOnly {
		q = q.Where(squirrel.Expr("b.expired_date IS NOT NULL AND b.expired_date < now()"))
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"s.product_name": "%" + filter.Search + "%"})
	}

	// Count total (before pagination)
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count batches: %w", err)
	}

	q = q.OrderBy("b.created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list batches: %w", err)
	}

	return result, nil
}
