// Package stock provides the product catalog: owner-scoped items with an
// aggregate on-hand quantity derived from their batches.
package stock

import (
	"context"
	"strings"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain"
)

// ProductType categorizes stock items for dashboard distribution.
type ProductType string

const (
	TypeFood      ProductType = "food"
	TypeBeverage  ProductType = "beverage"
	TypeHousehold ProductType = "household"
	TypeOther     ProductType = "other"
)

// Product represents a stock item owned by a single user.
// Quantity is the aggregate of the product's batch quantities and is
// maintained by the adjustment ledger, never set directly by clients.
type Product struct {
	domain.Owned

	// Name is the display name; market comparison joins on exact name equality
	Name string `db:"product_name" json:"productName"`

	// Type categorizes the product
	Type ProductType `db:"product_type" json:"productType"`

	// Price is the current unit price
	Price types.Money `db:"price" json:"price"`

	// Quantity is the on-hand total across all batches
	Quantity int64 `db:"quantity" json:"quantity"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(ownerID id.ID, name string, productType ProductType, price types.Money) *Product {
	return &Product{
		Owned: domain.NewOwned(ownerID),
		Name:  strings.TrimSpace(name),
		Type:  productType,
		Price: price,
	}
}

// Validate checks business rules before persistence.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "productName")
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "productType").
			WithDetail("value", string(p.Type))
	}

	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	if p.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	return nil
}

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeFood, TypeBeverage, TypeHousehold, TypeOther:
		return true
	}
	return false
}
