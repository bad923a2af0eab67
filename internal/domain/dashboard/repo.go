package dashboard

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
)

// Repository defines the dashboard's aggregate queries.
type Repository interface {
	// CountProducts returns the owner's total product count
	CountProducts(ctx context.Context, ownerID id.ID) (int64, error)

	// CountLowStock returns the number of products below threshold
	CountLowStock(ctx context.Context, ownerID id.ID, threshold int64) (int64, error)

	// MovementTotalsByDay returns per-day IN/OUT totals within [from, to),
	// ordered by day ascending; days without movements are absent
	MovementTotalsByDay(ctx context.Context, ownerID id.ID, from, to time.Time) ([]PeriodTotals, error)

	// MovementTotalsGrouped returns IN/OUT totals over the owner's whole
	// movement history, bucketed by the given calendar grouping and
	// ordered by period ascending
	MovementTotalsGrouped(ctx context.Context, ownerID id.ID, grouping Grouping) ([]PeriodTotals, error)

	// TypeDistribution returns on-hand quantity summed per product type
	TypeDistribution(ctx context.Context, ownerID id.ID) ([]TypeQuantity, error)
}
