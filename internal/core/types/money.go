// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; prices are stored
// as Postgres NUMERIC and must round-trip exactly.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// PercentChange returns (close-open)/open*100 and reports whether the
// result is defined. A zero open has no defined change.
func PercentChange(open, close Money) (float64, bool) {
	if open.IsZero() {
		return 0, false
	}
	pct, _ := close.Sub(open).Div(open).Mul(decimal.NewFromInt(100)).Float64()
	return pct, true
}
