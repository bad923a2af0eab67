// Package market provides cross-user price comparison and price-trend
// aggregation over the price history log.
package market

import (
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// OwnedProduct is the caller's product slice used for comparison.
type OwnedProduct struct {
	ID    id.ID       `db:"id"`
	Name  string      `db:"product_name"`
	Price types.Money `db:"price"`
}

// CompetitorPrice is another user's price for a same-named product.
type CompetitorPrice struct {
	OwnerID  id.ID       `db:"owner_id" json:"ownerId"`
	Username string      `db:"username" json:"username"`
	Price    types.Money `db:"price" json:"price"`
}

// Comparison is the market view of one product name: the caller's price
// next to every other user's price for the same name. A name nobody else
// sells yields an empty competitor list, not an omission.
type Comparison struct {
	ProductID   id.ID             `json:"productId"`
	ProductName string            `json:"productName"`
	OwnPrice    types.Money       `json:"ownPrice"`
	Competitors []CompetitorPrice `json:"competitors"`
}

// PricePoint is one observation in the price history log.
type PricePoint struct {
	ProductID   id.ID       `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	Price       types.Money `db:"price" json:"price"`
	RecordedAt  time.Time   `db:"recorded_at" json:"recordedAt"`
}

// ProductChange is the open/close price movement of one product within a
// time bucket. Open is the earliest observation, close the latest.
type ProductChange struct {
	ProductID   id.ID       `json:"productId"`
	ProductName string      `json:"productName"`
	Open        types.Money `json:"open"`
	Close       types.Money `json:"close"`
	ChangePct   float64     `json:"changePct"`
}

// DayChange is one weekday bucket of a product's weekly trend.
type DayChange struct {
	Weekday   string  `json:"weekday"`
	ChangePct float64 `json:"changePct"`
}

// WeeklyProductChange is a product's trend over the current week,
// bucketed by weekday.
type WeeklyProductChange struct {
	ProductID   id.ID       `json:"productId"`
	ProductName string      `json:"productName"`
	Days        []DayChange `json:"days"`
}

// ProductDashboard is the per-product market view: the comparison block
// for the product's name, the current week's history and per-weekday
// changes across every user selling under the name, and today's change.
type ProductDashboard struct {
	ProductID     id.ID             `json:"productId"`
	ProductName   string            `json:"productName"`
	CurrentPrice  types.Money       `json:"currentPrice"`
	Competitors   []CompetitorPrice `json:"competitors"`
	History       []PricePoint      `json:"history"`
	WeeklyChanges []DayChange       `json:"weeklyChanges"`
	DailyChange   *float64          `json:"dailyChange,omitempty"`
}
