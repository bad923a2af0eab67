// Package report_repo provides the PostgreSQL aggregate queries behind the
// dashboard summary.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/dashboard"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ dashboard.Repository = (*ReportRepo)(nil)

// ReportRepo implements dashboard.Repository.
type ReportRepo struct {
	txm *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

// CountProducts returns the owner's total product count.
func (r *ReportRepo) CountProducts(ctx context.Context, ownerID id.ID) (int64, error) {
	var count int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM stock WHERE owner_id = $1`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

// CountLowStock returns the number of products below threshold.
func (r *ReportRepo) CountLowStock(ctx context.Context, ownerID id.ID, threshold int64) (int64, error) {
	var count int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM stock WHERE owner_id = $1 AND quantity < $2`,
		ownerID, threshold,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}

	return count, nil
}

// MovementTotalsByDay returns per-day IN/OUT totals within [from, to).
func (r *ReportRepo) MovementTotalsByDay(ctx context.Context, ownerID id.ID, from, to time.Time) ([]dashboard.PeriodTotals, error) {
	query := `
		SELECT date_trunc('day', movement_date) AS period,
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'IN'), 0)  AS total_in,
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'OUT'), 0) AS total_out
		FROM stock_movements
		WHERE owner_id = $1 AND movement_date >= $2 AND movement_date < $3
		GROUP BY period
		ORDER BY period
	`

	var totals []dashboard.PeriodTotals
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, query, ownerID, from, to); err != nil {
		return nil, fmt.Errorf("movement totals by day: %w", err)
	}

	return totals, nil
}

// MovementTotalsGrouped returns IN/OUT totals over the owner's whole
// movement history, bucketed by the given calendar grouping.
func (r *ReportRepo) MovementTotalsGrouped(ctx context.Context, ownerID id.ID, grouping dashboard.Grouping) ([]dashboard.PeriodTotals, error) {
	switch grouping {
	case dashboard.GroupDay, dashboard.GroupWeek, dashboard.GroupMonth:
	default:
		return nil, fmt.Errorf("unsupported grouping %q", grouping)
	}

	query := `
		SELECT date_trunc($2, movement_date) AS period,
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'IN'), 0)  AS total_in,
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'OUT'), 0) AS total_out
		FROM stock_movements
		WHERE owner_id = $1
		GROUP BY period
		ORDER BY period
	`

	var totals []dashboard.PeriodTotals
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, query, ownerID, string(grouping)); err != nil {
		return nil, fmt.Errorf("movement totals by %s: %w", grouping, err)
	}

	return totals, nil
}

// TypeDistribution returns on-hand quantity summed per product type.
func (r *ReportRepo) TypeDistribution(ctx context.Context, ownerID id.ID) ([]dashboard.TypeQuantity, error) {
	query := `
		SELECT product_type, COALESCE(SUM(quantity), 0) AS quantity
		FROM stock
		WHERE owner_id = $1
		GROUP BY product_type
		ORDER BY product_type
	`

	var dist []dashboard.TypeQuantity
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &dist, query, ownerID); err != nil {
		return nil, fmt.Errorf("type distribution: %w", err)
	}

	return dist, nil
}
