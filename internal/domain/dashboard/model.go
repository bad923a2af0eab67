// Package dashboard aggregates inventory metrics for the summary view.
package dashboard

import (
	"time"
)

// LowStockThreshold is the dashboard's low-stock cutoff. Deliberately
// looser than the announcement threshold: the dashboard warns earlier
// than the alert fires.
const LowStockThreshold = 5

// Grouping selects the calendar bucket for movement aggregation.
type Grouping string

const (
	GroupDay   Grouping = "day"
	GroupWeek  Grouping = "week"
	GroupMonth Grouping = "month"
)

// PeriodTotals is one calendar bucket of IN/OUT movement volume.
type PeriodTotals struct {
	Period   time.Time `db:"period" json:"period"`
	TotalIn  int64     `db:"total_in" json:"totalIn"`
	TotalOut int64     `db:"total_out" json:"totalOut"`
}

// TypeQuantity is the raw on-hand quantity of one product type.
type TypeQuantity struct {
	Type     string `db:"product_type" json:"productType"`
	Quantity int64  `db:"quantity" json:"quantity"`
}

// TypeShare is a product type's share of total on-hand quantity.
type TypeShare struct {
	Type       string  `json:"productType"`
	Quantity   int64   `json:"quantity"`
	Percentage float64 `json:"percentage"`
}

// Summary is the dashboard payload: counts, movement volume over the
// whole history bucketed three ways, the last-7-days daily series, and
// the type distribution.
type Summary struct {
	TotalProducts int64          `json:"totalProducts"`
	LowStockCount int64          `json:"lowStockCount"`
	Monthly       []PeriodTotals `json:"monthlyMovements"`
	Weekly        []PeriodTotals `json:"weeklyMovements"`
	Daily         []PeriodTotals `json:"dailyMovements"`
	Last7Days     []PeriodTotals `json:"last7DaysMovements"`
	Distribution  []TypeShare    `json:"distribution"`
}
