// Package announce_repo provides the PostgreSQL implementation of
// announcement persistence and the stock-scan read model.
package announce_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/announcement"
	"stocktrack/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ announcement.Repository = (*AnnouncementRepo)(nil)

// AnnouncementRepo implements announcement.Repository on the
// "stock_announcements" table.
type AnnouncementRepo struct {
	txm *postgres.TxManager
}

// NewAnnouncementRepo creates a new announcement repository.
func NewAnnouncementRepo(txm *postgres.TxManager) *AnnouncementRepo {
	return &AnnouncementRepo{txm: txm}
}

// ListActive retrieves the owner's active announcements, newest first.
func (r *AnnouncementRepo) ListActive(ctx context.Context, ownerID id.ID) ([]*announcement.Announcement, error) {
	query := `
		SELECT id, owner_id, product_id, announcement_type, message,
		       is_active, created_at, updated_at
		FROM stock_announcements
		WHERE owner_id = $1 AND is_active = true
		ORDER BY created_at DESC
	`

	var items []*announcement.Announcement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	return items, nil
}

// HasActive reports whether an active announcement of the given type exists
// for the product.
func (r *AnnouncementRepo) HasActive(ctx context.Context, ownerID, productID id.ID, typ announcement.Type) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stock_announcements
			WHERE owner_id = $1 AND product_id = $2
			  AND announcement_type = $3 AND is_active = true
		)
	`

	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, ownerID, productID, typ).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active announcement: %w", err)
	}

	return exists, nil
}

// Insert creates a new announcement row.
func (r *AnnouncementRepo) Insert(ctx context.Context, a *announcement.Announcement) error {
	query := `
		INSERT INTO stock_announcements (
			id, owner_id, product_id, announcement_type, message,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, query,
		a.ID, a.OwnerID, a.ProductID, a.Type, a.Message,
		a.IsActive, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}

	return nil
}

// Dismiss deactivates the owner's announcement. Rows that are already
// inactive, missing, or owned by someone else affect zero rows.
func (r *AnnouncementRepo) Dismiss(ctx context.Context, ownerID, announcementID id.ID) (int64, error) {
	query := `
		UPDATE stock_announcements
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND is_active = true
	`

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, query, announcementID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("dismiss announcement: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListProducts retrieves the scan's product snapshot for the owner.
func (r *AnnouncementRepo) ListProducts(ctx context.Context, ownerID id.ID) ([]announcement.ProductState, error) {
	query := `
		SELECT id, product_name, quantity
		FROM stock
		WHERE owner_id = $1
		ORDER BY created_at
	`

	var items []announcement.ProductState
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("list products for scan: %w", err)
	}

	return items, nil
}

// HasExpiredBatch reports whether the product has any batch expired as of now.
func (r *AnnouncementRepo) HasExpiredBatch(ctx context.Context, ownerID, productID id.ID, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stock_batches
			WHERE owner_id = $1 AND product_id = $2
			  AND expired_date IS NOT NULL AND expired_date < $3
		)
	`

	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, ownerID, productID, now).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check expired batches: %w", err)
	}

	return exists, nil
}
