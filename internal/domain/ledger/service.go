package ledger

import (
	"context"
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/tx"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
	"stocktrack/pkg/logger"
)

// Service executes the atomic stock operations.
//
// AdjustStock serializes concurrent adjustments on the same batch through a
// FOR UPDATE row lock: the second writer blocks until the first commits,
// then re-reads the committed quantity. An OUT that would drive the batch
// negative rejects the whole operation with INSUFFICIENT_STOCK and leaves
// no partial state.
type Service struct {
	repo  Repository
	txm   tx.Manager
	audit domain.AuditRecorder
}

// NewService creates a new ledger service.
func NewService(repo Repository, txm tx.Manager, audit domain.AuditRecorder) *Service {
	return &Service{
		repo:  repo,
		txm:   txm,
		audit: audit,
	}
}

// AdjustInput describes one IN/OUT adjustment against a batch.
type AdjustInput struct {
	BatchID  id.ID
	Type     movement.Type
	Quantity int64
}

func (in AdjustInput) validate() error {
	if id.IsNil(in.BatchID) {
		return apperror.NewValidation("batch is required").
			WithDetail("field", "batchId")
	}
	if !in.Type.IsValid() {
		return apperror.NewValidation("movement type must be IN or OUT").
			WithDetail("field", "movementType").
			WithDetail("value", string(in.Type))
	}
	if in.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", in.Quantity)
	}
	return nil
}

// AdjustStock applies one IN/OUT adjustment as a single atomic unit:
// lock the batch row, verify ownership and availability, update the batch
// quantity, append the movement, and propagate the delta to the product
// aggregate. Either all of it commits or none of it does.
func (s *Service) AdjustStock(ctx context.Context, ownerID id.ID, in AdjustInput) (*movement.Movement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &movement.Movement{
		ID:           id.New(),
		OwnerID:      ownerID,
		BatchID:      in.BatchID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		MovementDate: now,
		CreatedAt:    now,
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.GetBatchForUpdate(ctx, ownerID, in.BatchID)
		if err != nil {
			return err
		}

		delta := in.Quantity
		if in.Type == movement.TypeOut {
			delta = -in.Quantity
		}

		newQuantity := locked.Quantity + delta
		if newQuantity < 0 {
			return apperror.NewInsufficientStock(in.BatchID.String(), in.Quantity, locked.Quantity)
		}

		if err := s.repo.SetBatchQuantity(ctx, in.BatchID, newQuantity); err != nil {
			return err
		}

		if err := s.repo.InsertMovement(ctx, m); err != nil {
			return err
		}

		return s.repo.AddProductQuantity(ctx, ownerID, locked.ProductID, delta)
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, "stock_movements", m.ID, "adjust", map[string]any{
		"batch_id":      in.BatchID,
		"movement_type": in.Type,
		"quantity":      in.Quantity,
	}); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock_movements", "id", m.ID, "error", err)
	}

	return m, nil
}

// CreateProductInput describes a new product with its initial batch.
type CreateProductInput struct {
	Name            string
	Type            stock.ProductType
	Price           types.Money
	InitialQuantity int64
	ExpiredDate     *time.Time
}

// CreateProductResult returns the rows created atomically.
type CreateProductResult struct {
	Product *stock.Product
	Batch   *batch.Batch
}

// CreateProductWithInitialBatch creates a product, its first batch and the
// first price history point as a single unit, or nothing at all.
func (s *Service) CreateProductWithInitialBatch(ctx context.Context, ownerID id.ID, in CreateProductInput) (*CreateProductResult, error) {
	if in.InitialQuantity < 0 {
		return nil, apperror.NewValidation("initial quantity cannot be negative").
			WithDetail("field", "quantity").
			WithDetail("value", in.InitialQuantity)
	}

	p := stock.NewProduct(ownerID, in.Name, in.Type, in.Price)
	p.Quantity = in.InitialQuantity
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	b := batch.NewBatch(ownerID, p.ID, in.InitialQuantity, in.ExpiredDate)
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertProduct(ctx, p); err != nil {
			return err
		}
		if err := s.repo.InsertBatch(ctx, b); err != nil {
			return err
		}
		return s.repo.InsertPricePoint(ctx, ownerID, p.ID, in.Price, p.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, "stock", p.ID, "create", map[string]any{
		"product_name": p.Name,
		"quantity":     in.InitialQuantity,
		"batch_id":     b.ID,
	}); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock", "id", p.ID, "error", err)
	}

	return &CreateProductResult{Product: p, Batch: b}, nil
}
