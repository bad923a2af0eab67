package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/id"
)

type fakeRepo struct {
	total        int64
	lowStock     int64
	last7        []PeriodTotals
	grouped      map[Grouping][]PeriodTotals
	distribution []TypeQuantity

	gotThreshold int64
	gotFrom      time.Time
	gotTo        time.Time
	gotGroupings []Grouping
}

func (r *fakeRepo) CountProducts(ctx context.Context, ownerID id.ID) (int64, error) {
	return r.total, nil
}

func (r *fakeRepo) CountLowStock(ctx context.Context, ownerID id.ID, threshold int64) (int64, error) {
	r.gotThreshold = threshold
	return r.lowStock, nil
}

func (r *fakeRepo) MovementTotalsByDay(ctx context.Context, ownerID id.ID, from, to time.Time) ([]PeriodTotals, error) {
	r.gotFrom, r.gotTo = from, to
	return r.last7, nil
}

func (r *fakeRepo) MovementTotalsGrouped(ctx context.Context, ownerID id.ID, grouping Grouping) ([]PeriodTotals, error) {
	r.gotGroupings = append(r.gotGroupings, grouping)
	return r.grouped[grouping], nil
}

func (r *fakeRepo) TypeDistribution(ctx context.Context, ownerID id.ID) ([]TypeQuantity, error) {
	return r.distribution, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
	month := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	week := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		total:    12,
		lowStock: 3,
		last7: []PeriodTotals{
			{Period: now.AddDate(0, 0, -2), TotalIn: 10, TotalOut: 4},
		},
		grouped: map[Grouping][]PeriodTotals{
			GroupMonth: {{Period: month, TotalIn: 40, TotalOut: 25}},
			GroupWeek:  {{Period: week, TotalIn: 15, TotalOut: 9}},
			GroupDay: {
				{Period: now.AddDate(0, 0, -1), TotalIn: 5, TotalOut: 2},
				{Period: now.Truncate(24 * time.Hour), TotalIn: 10, TotalOut: 7},
			},
		},
		distribution: []TypeQuantity{
			{Type: "food", Quantity: 30},
			{Type: "beverage", Quantity: 50},
			{Type: "household", Quantity: 20},
		},
	}

	svc := NewService(repo, fakeTxManager{}, func() time.Time { return now })
	sum, err := svc.Summary(context.Background(), id.New())
	require.NoError(t, err)

	assert.Equal(t, int64(12), sum.TotalProducts)
	assert.Equal(t, int64(3), sum.LowStockCount)
	assert.Equal(t, int64(LowStockThreshold), repo.gotThreshold)

	// One grouped aggregate per calendar bucket
	assert.Equal(t, []Grouping{GroupMonth, GroupWeek, GroupDay}, repo.gotGroupings)
	require.Len(t, sum.Monthly, 1)
	assert.Equal(t, int64(40), sum.Monthly[0].TotalIn)
	require.Len(t, sum.Weekly, 1)
	assert.Equal(t, int64(9), sum.Weekly[0].TotalOut)
	require.Len(t, sum.Daily, 2)

	// Last seven days window
	assert.Equal(t, now.AddDate(0, 0, -7), repo.gotFrom)
	assert.Equal(t, now, repo.gotTo)
	require.Len(t, sum.Last7Days, 1)

	require.Len(t, sum.Distribution, 3)
	assert.InDelta(t, 30.0, sum.Distribution[0].Percentage, 1e-9)
	assert.InDelta(t, 50.0, sum.Distribution[1].Percentage, 1e-9)
	assert.InDelta(t, 20.0, sum.Distribution[2].Percentage, 1e-9)

	// Percentages sum to 100
	var pctSum float64
	for _, d := range sum.Distribution {
		pctSum += d.Percentage
	}
	assert.InDelta(t, 100.0, pctSum, 1e-6)
}

func TestSummary_ZeroTotalQuantity(t *testing.T) {
	repo := &fakeRepo{
		distribution: []TypeQuantity{
			{Type: "food", Quantity: 0},
			{Type: "beverage", Quantity: 0},
		},
	}

	svc := NewService(repo, fakeTxManager{}, nil)
	sum, err := svc.Summary(context.Background(), id.New())
	require.NoError(t, err)

	require.Len(t, sum.Distribution, 2)
	for _, d := range sum.Distribution {
		assert.Zero(t, d.Percentage)
	}

	// Empty series serialize as [], not null
	assert.NotNil(t, sum.Monthly)
	assert.NotNil(t, sum.Weekly)
	assert.NotNil(t, sum.Daily)
	assert.NotNil(t, sum.Last7Days)
}
