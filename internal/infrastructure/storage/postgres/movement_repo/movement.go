// Package movement_repo provides read access to the stock movement ledger.
// Movements are never written here; the ledger repository appends them
// inside the adjustment transaction.
package movement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ movement.Repository = (*MovementRepo)(nil)

// movementJoinCols are the columns selected when joining movements through
// batches to products.
var movementJoinCols = []string{
	"m.id", "m.owner_id", "m.batch_id", "m.movement_type", "m.quantity",
	"m.movement_date", "m.created_at",
	"b.product_id", "s.product_name",
}

// MovementRepo implements movement.Repository on the "stock_movements" table.
type MovementRepo struct {
	txm *postgres.TxManager
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{txm: txm}
}

func (r *MovementRepo) baseSelect(ownerID id.ID) squirrel.SelectBuilder {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select(movementJoinCols...).
		From("stock_movements m").
		Join("stock_batches b ON b.id = m.batch_id").
		Join("stock s ON s.id = b.product_id").
		Where(squirrel.Eq{"m.owner_id": ownerID})
}

// GetByID retrieves one of the owner's movements.
func (r *MovementRepo) GetByID(ctx context.Context, ownerID, movementID id.ID) (*movement.WithProduct, error) {
	q := r.baseSelect(ownerID).Where(squirrel.Eq{"m.id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m movement.WithProduct
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock_movements", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}

	return &m, nil
}

// List retrieves the owner's movements, newest first.
func (r *MovementRepo) List(ctx context.Context, ownerID id.ID, filter movement.ListFilter) (domain.ListResult[*movement.WithProduct], error) {
	result := domain.ListResult[*movement.WithProduct]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ownerID)

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"m.movement_type": *filter.Type})
	}

	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"m.batch_id": *filter.BatchID})
	}

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"b.product_id": *filter.ProductID})
	}

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"m.movement_date": *filter.From})
	}

	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"m.movement_date": *filter.To})
	}

	// Count total (before pagination)
	countQ := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count movements: %w", err)
	}

	q = q.OrderBy("m.movement_date DESC", "m.created_at DESC")

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
		return result, fmt.Errorf("list movements: %w", err)
	}

	return result, nil
}
