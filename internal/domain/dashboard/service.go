package dashboard

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/tx"
)

// Service assembles the dashboard summary. The only logic it owns is the
// percentage normalization of the type distribution; everything else is
// aggregated by the database. The whole summary runs inside a read-only
// transaction so its counts and series describe one snapshot.
type Service struct {
	repo Repository
	ro   tx.ReadOnlyManager
	now  func() time.Time
}

// NewService creates a new dashboard service.
func NewService(repo Repository, ro tx.ReadOnlyManager, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, ro: ro, now: now}
}

// Summary computes the owner's dashboard: product counts, movement volume
// bucketed by month, week and day over the whole history, the last seven
// days as a daily series, and the type distribution as a share of total
// quantity.
func (s *Service) Summary(ctx context.Context, ownerID id.ID) (*Summary, error) {
	var sum *Summary

	err := s.ro.ReadOnly(ctx, func(ctx context.Context) error {
		total, err := s.repo.CountProducts(ctx, ownerID)
		if err != nil {
			return err
		}

		lowStock, err := s.repo.CountLowStock(ctx, ownerID, LowStockThreshold)
		if err != nil {
			return err
		}

		monthly, err := s.repo.MovementTotalsGrouped(ctx, ownerID, GroupMonth)
		if err != nil {
			return err
		}
		weekly, err := s.repo.MovementTotalsGrouped(ctx, ownerID, GroupWeek)
		if err != nil {
			return err
		}
		daily, err := s.repo.MovementTotalsGrouped(ctx, ownerID, GroupDay)
		if err != nil {
			return err
		}

		now := s.now()
		last7, err := s.repo.MovementTotalsByDay(ctx, ownerID, now.AddDate(0, 0, -7), now)
		if err != nil {
			return err
		}

		raw, err := s.repo.TypeDistribution(ctx, ownerID)
		if err != nil {
			return err
		}

		sum = &Summary{
			TotalProducts: total,
			LowStockCount: lowStock,
			Monthly:       emptyIfNil(monthly),
			Weekly:        emptyIfNil(weekly),
			Daily:         emptyIfNil(daily),
			Last7Days:     emptyIfNil(last7),
			Distribution:  normalize(raw),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sum, nil
}

// emptyIfNil keeps empty series serializing as [], not null.
func emptyIfNil(totals []PeriodTotals) []PeriodTotals {
	if totals == nil {
		return []PeriodTotals{}
	}
	return totals
}

// normalize converts raw per-type quantities into percentage shares.
// share = quantity / sum(all quantities) * 100; all zero when the sum is zero.
func normalize(raw []TypeQuantity) []TypeShare {
	var sum int64
	for _, r := range raw {
		sum += r.Quantity
	}

	out := make([]TypeShare, 0, len(raw))
	for _, r := range raw {
		share := TypeShare{
			Type:     r.Type,
			Quantity: r.Quantity,
		}
		if sum > 0 {
			share.Percentage = float64(r.Quantity) / float64(sum) * 100
		}
		out = append(out, share)
	}

	return out
}
