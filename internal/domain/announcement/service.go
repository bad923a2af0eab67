package announcement

import (
	"context"
	"fmt"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
	"stocktrack/pkg/logger"
)

// OutcomeStatus reports what the scan did for one triggered condition.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ScanOutcome is the per-condition result of a scan. Insert failures are
// reported here instead of being visible only in logs.
type ScanOutcome struct {
	ProductID   id.ID         `json:"productId"`
	ProductName string        `json:"productName"`
	Type        Type          `json:"announcementType"`
	Status      OutcomeStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
}

// Service derives and manages announcements.
type Service struct {
	repo  Repository
	audit domain.AuditRecorder
	now   func() time.Time
}

// NewService creates a new announcement service.
func NewService(repo Repository, audit domain.AuditRecorder, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		repo:  repo,
		audit: audit,
		now:   now,
	}
}

// ListActive retrieves the owner's active announcements.
func (s *Service) ListActive(ctx context.Context, ownerID id.ID) ([]*Announcement, error) {
	return s.repo.ListActive(ctx, ownerID)
}

// Scan walks the owner's products and raises low_stock and expired
// announcements for conditions not already covered by an active one.
//
// Failure policy: a failed read (products, batches, dedup lookups) aborts
// the whole scan; a failed insert only skips that one condition and the
// scan continues. Products are independent, order does not matter.
func (s *Service) Scan(ctx context.Context, ownerID id.ID) ([]ScanOutcome, error) {
	products, err := s.repo.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	now := s.now()
	var outcomes []ScanOutcome

	for _, p := range products {
		if p.Quantity < LowStockThreshold {
			msg := fmt.Sprintf("The stock for product %s is low (Quantity: %d).", p.Name, p.Quantity)
			outcome, err := s.raise(ctx, ownerID, p, TypeLowStock, msg)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, outcome)
		}

		expired, err := s.repo.HasExpiredBatch(ctx, ownerID, p.ID, now)
		if err != nil {
			return nil, fmt.Errorf("check expired batches: %w", err)
		}
		if expired {
			msg := fmt.Sprintf("The product %s has expired batches. Please check expiration dates.", p.Name)
			outcome, err := s.raise(ctx, ownerID, p, TypeExpired, msg)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes, nil
}

// raise creates an announcement unless an active duplicate exists.
// Lookup failures abort the scan; insert failures are reported as a
// skipped outcome.
func (s *Service) raise(ctx context.Context, ownerID id.ID, p ProductState, typ Type, message string) (ScanOutcome, error) {
	outcome := ScanOutcome{
		ProductID:   p.ID,
		ProductName: p.Name,
		Type:        typ,
	}

	active, err := s.repo.HasActive(ctx, ownerID, p.ID, typ)
	if err != nil {
		return outcome, fmt.Errorf("check active announcement: %w", err)
	}
	if active {
		outcome.Status = OutcomeSkipped
		outcome.Reason = "already active"
		return outcome, nil
	}

	a := New(ownerID, p.ID, typ, message)
	if err := s.repo.Insert(ctx, a); err != nil {
		logger.Warn(ctx, "announcement insert failed",
			"product_id", p.ID, "type", typ, "error", err)
		outcome.Status = OutcomeSkipped
		outcome.Reason = "insert failed"
		return outcome, nil
	}

	outcome.Status = OutcomeCreated
	return outcome, nil
}

// Dismiss deactivates an announcement. Dismissing an already-dismissed or
// missing announcement is a silent no-op.
func (s *Service) Dismiss(ctx context.Context, ownerID, announcementID id.ID) error {
	affected, err := s.repo.Dismiss(ctx, ownerID, announcementID)
	if err != nil {
		return err
	}

	if affected > 0 {
		if err := s.audit.Record(ctx, "stock_announcements", announcementID, "dismiss", nil); err != nil {
			logger.Warn(ctx, "audit record failed", "entity", "stock_announcements", "id", announcementID, "error", err)
		}
	}

	return nil
}
