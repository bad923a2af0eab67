package market

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// Repository defines the market read model and price history persistence.
// Reading competitor rows is the single place cross-user access is allowed.
type Repository interface {
	// OwnProducts retrieves the owner's products (id, name, price)
	OwnProducts(ctx context.Context, ownerID id.ID) ([]OwnedProduct, error)

	// OwnProduct retrieves one of the owner's products
	OwnProduct(ctx context.Context, ownerID, productID id.ID) (*OwnedProduct, error)

	// CompetitorsByNames retrieves every other user's products matching the
	// given names exactly, joined to the competitor's username. The result
	// maps product name to competitor entries; names with no match are absent.
	CompetitorsByNames(ctx context.Context, ownerID id.ID, names []string) (map[string][]CompetitorPrice, error)

	// PricePoints retrieves the owner's price observations within [from, to),
	// ordered by recorded_at ascending
	PricePoints(ctx context.Context, ownerID id.ID, from, to time.Time) ([]PricePoint, error)

	// PricePointsByName retrieves every user's observations for products
	// with the exact name within [from, to), ordered by recorded_at
	// ascending. The market dashboard trends a product name across the
	// whole market, so this read is not owner-scoped.
	PricePointsByName(ctx context.Context, name string, from, to time.Time) ([]PricePoint, error)

	// AppendPoint appends a price observation (implements stock.PriceRecorder)
	AppendPoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error
}
