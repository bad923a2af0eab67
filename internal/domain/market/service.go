package market

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/tx"
	"stocktrack/internal/core/types"
)

// weekdayOrder fixes the reporting order of weekly buckets, Monday first.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Service computes market comparisons and price trends.
//
// All calendar bucketing (days, weekdays, week boundaries) happens in the
// injected location, never in process-local time, so results are
// reproducible regardless of where the server runs. The clock is injected
// for the same reason. Multi-query views run inside a read-only
// transaction so they see one consistent snapshot.
type Service struct {
	repo Repository
	ro   tx.ReadOnlyManager
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a new market service.
func NewService(repo Repository, ro tx.ReadOnlyManager, loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		ro:   ro,
		loc:  loc,
		now:  now,
	}
}

// Comparison returns, for each distinct product name the caller owns, the
// competitor prices from other users selling a product with the exact same
// name. When the caller owns several products under one name, the first
// row's price represents it. Names with no match elsewhere appear with an
// empty competitor list.
func (s *Service) Comparison(ctx context.Context, ownerID id.ID) ([]Comparison, error) {
	var out []Comparison

	err := s.ro.ReadOnly(ctx, func(ctx context.Context) error {
		own, err := s.repo.OwnProducts(ctx, ownerID)
		if err != nil {
			return err
		}
		if len(own) == 0 {
			out = []Comparison{}
			return nil
		}

		names := make([]string, 0, len(own))
		firsts := make([]OwnedProduct, 0, len(own))
		seen := make(map[string]struct{}, len(own))
		for _, p := range own {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
			firsts = append(firsts, p)
		}

		competitors, err := s.repo.CompetitorsByNames(ctx, ownerID, names)
		if err != nil {
			return err
		}

		out = make([]Comparison, 0, len(firsts))
		for _, p := range firsts {
			entry := Comparison{
				ProductID:   p.ID,
				ProductName: p.Name,
				OwnPrice:    p.Price,
				Competitors: competitors[p.Name],
			}
			if entry.Competitors == nil {
				entry.Competitors = []CompetitorPrice{}
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DailyChanges returns each product's price movement within the current
// calendar day. Open is the earliest observation in the day, close the
// latest; a zero open yields no entry for that product.
func (s *Service) DailyChanges(ctx context.Context, ownerID id.ID) ([]ProductChange, error) {
	from, to := s.dayBounds(s.now())

	points, err := s.repo.PricePoints(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	return changesPerProduct(points), nil
}

// WeeklyChanges returns each product's trend over the current week
// (Monday through Sunday), bucketed by weekday name.
func (s *Service) WeeklyChanges(ctx context.Context, ownerID id.ID) ([]WeeklyProductChange, error) {
	from, to := s.weekBounds(s.now())

	points, err := s.repo.PricePoints(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	grouped := groupByProduct(points)

	out := make([]WeeklyProductChange, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, WeeklyProductChange{
			ProductID:   g.productID,
			ProductName: g.name,
			Days:        s.weekdayChanges(g.points),
		})
	}

	return out, nil
}

// Dashboard returns the per-product market view: the caller's price next
// to every competitor's for the same name, the week's price history,
// per-weekday changes over the current week and today's change. History
// and trends cover every user selling under the name, not just the caller.
func (s *Service) Dashboard(ctx context.Context, ownerID, productID id.ID) (*ProductDashboard, error) {
	var d *ProductDashboard

	err := s.ro.ReadOnly(ctx, func(ctx context.Context) error {
		p, err := s.repo.OwnProduct(ctx, ownerID, productID)
		if err != nil {
			return err
		}

		competitors, err := s.repo.CompetitorsByNames(ctx, ownerID, []string{p.Name})
		if err != nil {
			return err
		}

		now := s.now()
		weekFrom, weekTo := s.weekBounds(now)
		weekPoints, err := s.repo.PricePointsByName(ctx, p.Name, weekFrom, weekTo)
		if err != nil {
			return err
		}

		dayFrom, dayTo := s.dayBounds(now)
		dayPoints, err := s.repo.PricePointsByName(ctx, p.Name, dayFrom, dayTo)
		if err != nil {
			return err
		}

		d = &ProductDashboard{
			ProductID:     p.ID,
			ProductName:   p.Name,
			CurrentPrice:  p.Price,
			Competitors:   competitors[p.Name],
			History:       weekPoints,
			WeeklyChanges: s.weekdayChanges(weekPoints),
		}
		if d.Competitors == nil {
			d.Competitors = []CompetitorPrice{}
		}
		if d.History == nil {
			d.History = []PricePoint{}
		}
		if d.WeeklyChanges == nil {
			d.WeeklyChanges = []DayChange{}
		}
		if len(dayPoints) > 0 {
			open := dayPoints[0].Price
			close := dayPoints[len(dayPoints)-1].Price
			if pct, ok := types.PercentChange(open, close); ok {
				d.DailyChange = &pct
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

// weekdayChanges buckets chronologically ordered points by weekday in the
// service's location and computes each bucket's open/close change, Monday
// first. Zero-open buckets are omitted.
func (s *Service) weekdayChanges(points []PricePoint) []DayChange {
	byDay := make(map[time.Weekday][]PricePoint)
	for _, p := range points {
		day := p.RecordedAt.In(s.loc).Weekday()
		byDay[day] = append(byDay[day], p)
	}

	var out []DayChange
	for _, day := range weekdayOrder {
		bucket := byDay[day]
		if len(bucket) == 0 {
			continue
		}
		open := bucket[0].Price
		close := bucket[len(bucket)-1].Price
		pct, ok := types.PercentChange(open, close)
		if !ok {
			continue
		}
		out = append(out, DayChange{
			Weekday:   day.String(),
			ChangePct: pct,
		})
	}
	return out
}

// dayBounds returns the current calendar day [start, end) in the
// service's location.
func (s *Service) dayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// weekBounds returns the current Monday-through-Sunday week [start, end)
// in the service's location.
func (s *Service) weekBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(s.loc)
	// time.Weekday counts Sunday as 0; shift so Monday is the week start
	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc).
		AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

type productPoints struct {
	productID id.ID
	name      string
	points    []PricePoint
}

// groupByProduct splits chronologically ordered points per product,
// preserving first-seen product order.
func groupByProduct(points []PricePoint) []productPoints {
	index := make(map[id.ID]int)
	var out []productPoints

	for _, p := range points {
		i, ok := index[p.ProductID]
		if !ok {
			i = len(out)
			index[p.ProductID] = i
			out = append(out, productPoints{productID: p.ProductID, name: p.ProductName})
		}
		out[i].points = append(out[i].points, p)
	}

	return out
}

// changesPerProduct computes open/close change per product from
// chronologically ordered points, skipping zero opens.
func changesPerProduct(points []PricePoint) []ProductChange {
	out := []ProductChange{}
	for _, g := range groupByProduct(points) {
		open := g.points[0].Price
		close := g.points[len(g.points)-1].Price
		pct, ok := types.PercentChange(open, close)
		if !ok {
			continue
		}
		out = append(out, ProductChange{
			ProductID:   g.productID,
			ProductName: g.name,
			Open:        open,
			Close:       close,
			ChangePct:   pct,
		})
	}
	return out
}
