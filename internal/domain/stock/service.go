package stock

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/tx"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain"
	"stocktrack/pkg/logger"
)

// PriceRecorder appends price observation points for trend analytics.
type PriceRecorder interface {
	AppendPoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error
}

// Service provides business logic for the product catalog.
// Product creation lives in the ledger service because it must create the
// initial batch atomically; this service covers the remaining lifecycle.
type Service struct {
	repo   Repository
	prices PriceRecorder
	txm    tx.Manager
	audit  domain.AuditRecorder
}

// NewService creates a new stock service.
func NewService(repo Repository, prices PriceRecorder, txm tx.Manager, audit domain.AuditRecorder) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		txm:    txm,
		audit:  audit,
	}
}

// GetByID retrieves the owner's product.
func (s *Service) GetByID(ctx context.Context, ownerID, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, ownerID, productID)
}

// List retrieves the owner's products.
func (s *Service) List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, ownerID, filter)
}

// UpdateInput carries editable product fields.
type UpdateInput struct {
	Name  string
	Type  ProductType
	Price types.Money
}

// Update edits a product's descriptive fields. A price change additionally
// appends a price history point in the same transaction, so trend queries
// never observe a price without its history row.
func (s *Service) Update(ctx context.Context, ownerID, productID id.ID, in UpdateInput) (*Product, error) {
	existing, err := s.repo.GetByID(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	priceChanged := !existing.Price.Equal(in.Price)
	oldState := map[string]any{
		"product_name": existing.Name,
		"product_type": existing.Type,
		"price":        existing.Price,
	}

	existing.Name = in.Name
	existing.Type = in.Type
	existing.Price = in.Price
	existing.Touch()

	if err := existing.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, ownerID, existing); err != nil {
			return err
		}
		if priceChanged {
			if err := s.prices.AppendPoint(ctx, ownerID, productID, in.Price, time.Now().UTC()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	newState := map[string]any{
		"product_name": existing.Name,
		"product_type": existing.Type,
		"price":        existing.Price,
	}
	if err := s.audit.Record(ctx, "stock", productID, "update", map[string]any{
		"old": oldState,
		"new": newState,
	}); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock", "id", productID, "error", err)
	}

	// Version changed in the database
	existing.Version++

	return existing, nil
}

// Delete removes the owner's product together with its batches, movements
// and announcements.
func (s *Service) Delete(ctx context.Context, ownerID, productID id.ID) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, ownerID, productID)
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, "stock", productID, "delete", nil); err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "stock", "id", productID, "error", err)
	}

	return nil
}
