// Package movement provides read access to the append-only stock movement
// ledger. Movement rows are written exclusively by the ledger service,
// atomically with the batch-quantity change they record.
package movement

import (
	"time"

	"stocktrack/internal/core/id"
)

// Type is the direction of a stock movement.
type Type string

const (
	TypeIn  Type = "IN"
	TypeOut Type = "OUT"
)

// IsValid reports whether t is a known movement type.
func (t Type) IsValid() bool {
	return t == TypeIn || t == TypeOut
}

// Movement is one immutable ledger entry against a batch.
type Movement struct {
	ID           id.ID     `db:"id" json:"id"`
	OwnerID      id.ID     `db:"owner_id" json:"-"`
	BatchID      id.ID     `db:"batch_id" json:"batchId"`
	Type         Type      `db:"movement_type" json:"movementType"`
	Quantity     int64     `db:"quantity" json:"quantity"`
	MovementDate time.Time `db:"movement_date" json:"movementDate"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// WithProduct is a movement joined through its batch to the product.
type WithProduct struct {
	Movement

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`
}
