package batch

import (
	"context"
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/tx"
	"stocktrack/internal/domain"
	"stocktrack/pkg/logger"
)

// ProductLedger is the slice of the product repository the batch service
// needs: existence checks and aggregate-quantity propagation.
type ProductLedger interface {
	Exists(ctx context.Context, ownerID, productID id.ID) (bool, error)
	AddQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error
}

// Service provides business logic for batches.
// Quantity changes through IN/OUT adjustments belong to the ledger service;
// this service handles the batch lifecycle and keeps the parent product's
// aggregate quantity in step with direct edits.
type Service struct {
	repo     Repository
	products ProductLedger
	txm      tx.Manager
	audit    domain.AuditRecorder
}

// NewService creates a new batch service.
func NewService(repo Repository, products ProductLedger, txm tx.Manager, audit domain.AuditRecorder) *Service {
	return &Service{
		repo:     repo,
		products: products,
		txm:      txm,
		audit:    audit,
	}
}

// CreateInput carries fields for a new batch.
type CreateInput struct {
	ProductID   id.ID
	Quantity    int64
	ExpiredDate *time.Time
}

// Create inserts a batch for an owned product and propagates its quantity
// to the product aggregate in the same transaction.
func (s *Service) Create(ctx context.Context, ownerID id.ID, in CreateInput) (*Batch, error) {
	b := NewBatch(ownerID, in.ProductID, in.Quantity, in.ExpiredDate)
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.products.Exists(ctx, ownerID, in.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("stock", in.ProductID.String())
		}

		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}

		if b.Quantity != 0 {
			return s.products.AddQuantity(ctx, ownerID, in.ProductID, b.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, "stock_batches", b.ID, "create", map[string]any{
		"product_id": b.ProductID,
		"quantity":   b.Quantity,
	}); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock_batches", "id", b.ID, "error", err)
	}

	return b, nil
}

// GetByID retrieves the owner's batch.
func (s *Service) GetByID(ctx context.Context, ownerID, batchID id.ID) (*Batch, error) {
	return s.repo.GetByID(ctx, ownerID, batchID)
}

// List retrieves the owner's batches joined to product names.
func (s *Service) List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*WithProduct], error) {
	return s.repo.List(ctx, ownerID, filter)
}

// UpdateInput carries editable batch fields.
type UpdateInput struct {
	Quantity    int64
	ExpiredDate *time.Time
}

// Update edits a batch directly. A quantity change shifts the product
// aggregate by the delta inside the same transaction, so the product total
// stays equal to the sum of its batches.
func (s *Service) Update(ctx context.Context, ownerID, batchID id.ID, in UpdateInput) (*Batch, error) {
	if in.Quantity < 0 {
		return nil, apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	var updated *Batch
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, ownerID, batchID)
		if err != nil {
			return err
		}

		delta := in.Quantity - existing.Quantity
		existing.Quantity = in.Quantity
		existing.ExpiredDate = in.ExpiredDate
		existing.Touch()

		if err := s.repo.Update(ctx, ownerID, existing); err != nil {
			return err
		}
		existing.Version++

		if delta != 0 {
			if err := s.products.AddQuantity(ctx, ownerID, existing.ProductID, delta); err != nil {
				return err
			}
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, "stock_batches", batchID, "update", map[string]any{
		"quantity": in.Quantity,
	}); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock_batches", "id", batchID, "error", err)
	}

	return updated, nil
}

// Delete removes a batch and subtracts its remaining quantity from the
// product aggregate.
func (s *Service) Delete(ctx context.Context, ownerID, batchID id.ID) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, ownerID, batchID)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, ownerID, batchID); err != nil {
			return err
		}

		if existing.Quantity != 0 {
			return s.products.AddQuantity(ctx, ownerID, existing.ProductID, -existing.Quantity)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, "stock_batches", batchID, "delete", nil); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock_batches", "id", batchID, "error", err)
	}

	return nil
}
