package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// --- Products ---

// CreateProductRequest creates a product together with its initial batch.
type CreateProductRequest struct {
	ProductName     string            `json:"productName" binding:"required"`
	ProductType     stock.ProductType `json:"productType" binding:"required"`
	Price           decimal.Decimal   `json:"price" binding:"required"`
	InitialQuantity int64             `json:"initialQuantity" binding:"omitempty,min=0"`
	ExpiredDate     *time.Time        `json:"expiredDate"`
}

// ToCreateInput converts to the ledger's creation input.
func (r CreateProductRequest) ToCreateInput() ledger.CreateProductInput {
	return ledger.CreateProductInput{
		Name:            r.ProductName,
		Type:            r.ProductType,
		Price:           r.Price,
		InitialQuantity: r.InitialQuantity,
		ExpiredDate:     r.ExpiredDate,
	}
}

// UpdateProductRequest edits a product's descriptive fields.
type UpdateProductRequest struct {
	ProductName string            `json:"productName" binding:"required"`
	ProductType stock.ProductType `json:"productType" binding:"required"`
	Price       decimal.Decimal   `json:"price" binding:"required"`
}

// ToUpdateInput converts to the stock service input.
func (r UpdateProductRequest) ToUpdateInput() stock.UpdateInput {
	return stock.UpdateInput{
		Name:  r.ProductName,
		Type:  r.ProductType,
		Price: r.Price,
	}
}

// CreateProductResponse returns the rows created atomically.
type CreateProductResponse struct {
	Product *stock.Product `json:"product"`
	Batch   *batch.Batch   `json:"batch"`
}

// AuditEntryResponse is one record of a product's change history.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserEmail string          `json:"userEmail,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromAuditEntries converts audit rows to their public view.
func FromAuditEntries(entries []postgres.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			UserEmail: e.UserEmail,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// --- Batches ---

// CreateBatchRequest creates a batch for an existing product.
type CreateBatchRequest struct {
	ProductID   string     `json:"productId" binding:"required,uuid"`
	Quantity    int64      `json:"quantity" binding:"omitempty,min=0"`
	ExpiredDate *time.Time `json:"expiredDate"`
}

// UpdateBatchRequest edits a batch.
type UpdateBatchRequest struct {
	Quantity    int64      `json:"quantity" binding:"min=0"`
	ExpiredDate *time.Time `json:"expiredDate"`
}

// BatchListQuery narrows batch listings.
type BatchListQuery struct {
	ListQuery
	ProductID   string `form:"productId" binding:"omitempty,uuid"`
	ExpiredOnly bool   `form:"expiredOnly"`
}

// --- Movements ---

// AdjustStockRequest records an IN/OUT adjustment against a batch.
type AdjustStockRequest struct {
	BatchID      string        `json:"batchId" binding:"required,uuid"`
	MovementType movement.Type `json:"movementType" binding:"required"`
	Quantity     int64         `json:"quantity" binding:"required,min=1"`
}

// BatchAdjustRequest is AdjustStockRequest with the batch taken from the path.
type BatchAdjustRequest struct {
	MovementType movement.Type `json:"movementType" binding:"required"`
	Quantity     int64         `json:"quantity" binding:"required,min=1"`
}

// MovementListQuery narrows movement listings.
type MovementListQuery struct {
	Type      string     `form:"movementType" binding:"omitempty,oneof=IN OUT"`
	BatchID   string     `form:"batchId" binding:"omitempty,uuid"`
	ProductID string     `form:"productId" binding:"omitempty,uuid"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset    int        `form:"offset" binding:"omitempty,min=0"`
}
