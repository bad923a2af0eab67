// Package market_repo provides the PostgreSQL market read model: the
// caller's products, every other user's same-named products, and the
// price history log. CompetitorsByNames and PricePointsByName are the
// only queries in the system that cross owner boundaries.
package market_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/market"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time checks.
var (
	_ market.Repository   = (*MarketRepo)(nil)
	_ stock.PriceRecorder = (*MarketRepo)(nil)
)

// MarketRepo implements market.Repository over the stock, users and
// price_history tables.
type MarketRepo struct {
	txm *postgres.TxManager
}

// NewMarketRepo creates a new market repository.
func NewMarketRepo(txm *postgres.TxManager) *MarketRepo {
	return &MarketRepo{txm: txm}
}

// OwnProducts retrieves the owner's products.
func (r *MarketRepo) OwnProducts(ctx context.Context, ownerID id.ID) ([]market.OwnedProduct, error) {
	query := `
		SELECT id, product_name, price
		FROM stock
		WHERE owner_id = $1
		ORDER BY created_at
	`

	var items []market.OwnedProduct
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("list own products: %w", err)
	}

	return items, nil
}

// OwnProduct retrieves one of the owner's products.
func (r *MarketRepo) OwnProduct(ctx context.Context, ownerID, productID id.ID) (*market.OwnedProduct, error) {
	query := `
		SELECT id, product_name, price
		FROM stock
		WHERE id = $1 AND owner_id = $2
	`

	var p market.OwnedProduct
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, query, productID, ownerID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock", productID.String())
		}
		return nil, fmt.Errorf("get own product: %w", err)
	}

	return &p, nil
}

// CompetitorsByNames retrieves other users' products matching the given
// names exactly, keyed by product name.
func (r *MarketRepo) CompetitorsByNames(ctx context.Context, ownerID id.ID, names []string) (map[string][]market.CompetitorPrice, error) {
	result := make(map[string][]market.CompetitorPrice, len(names))
	if len(names) == 0 {
		return result, nil
	}

	query := `
		SELECT s.product_name, s.owner_id, u.username, s.price
		FROM stock s
		JOIN users u ON u.id = s.owner_id
		WHERE s.product_name = ANY($1)
		  AND s.owner_id <> $2
		  AND u.deleted_at IS NULL
		ORDER BY s.product_name, u.username
	`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, query, names, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query competitors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var cp market.CompetitorPrice
		if err := rows.Scan(&name, &cp.OwnerID, &cp.Username, &cp.Price); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		result[name] = append(result[name], cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read competitors: %w", err)
	}

	return result, nil
}

// PricePoints retrieves the owner's price observations within [from, to).
func (r *MarketRepo) PricePoints(ctx context.Context, ownerID id.ID, from, to time.Time) ([]market.PricePoint, error) {
	query := `
		SELECT p.product_id, s.product_name, p.price, p.recorded_at
		FROM price_history p
		JOIN stock s ON s.id = p.product_id
		WHERE p.owner_id = $1 AND p.recorded_at >= $2 AND p.recorded_at < $3
		ORDER BY p.recorded_at
	`

	var points []market.PricePoint
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &points, query, ownerID, from, to); err != nil {
		return nil, fmt.Errorf("list price points: %w", err)
	}

	return points, nil
}

// PricePointsByName retrieves every user's observations for products with
// the exact name within [from, to). Not owner-scoped: the product
// dashboard trends a name across all sellers.
func (r *MarketRepo) PricePointsByName(ctx context.Context, name string, from, to time.Time) ([]market.PricePoint, error) {
	query := `
		SELECT p.product_id, s.product_name, p.price, p.recorded_at
		FROM price_history p
		JOIN stock s ON s.id = p.product_id
		WHERE s.product_name = $1
		  AND p.recorded_at >= $2 AND p.recorded_at < $3
		ORDER BY p.recorded_at
	`

	var points []market.PricePoint
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &points, query, name, from, to)
	if err != nil {
		return nil, fmt.Errorf("list price points by name: %w", err)
	}

	return points, nil
}

// AppendPoint appends a price observation to the history log.
func (r *MarketRepo) AppendPoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error {
	query := `
		INSERT INTO price_history (id, owner_id, product_id, price, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, query, id.New(), ownerID, productID, price, at)
	if err != nil {
		return fmt.Errorf("append price point: %w", err)
	}

	return nil
}
