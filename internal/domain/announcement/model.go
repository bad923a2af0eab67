// Package announcement derives and manages dismissible stock alerts:
// low-stock and expired-batch conditions scanned per owner.
package announcement

import (
	"time"

	"stocktrack/internal/core/id"
)

// Type classifies an announcement.
type Type string

const (
	TypeLowStock Type = "low_stock"
	TypeExpired  Type = "expired"

	// TypeExpiringSoon is accepted on read paths but never produced by the
	// scan. Derivation rules for it are a product decision that has not
	// been made yet.
	TypeExpiringSoon Type = "expiring_soon"
)

// LowStockThreshold is the quantity below which a low_stock announcement
// is raised.
const LowStockThreshold = 3

// Announcement is a derived, dismissible alert about one product.
// Dismissal deactivates the row; announcements are never deleted.
type Announcement struct {
	ID        id.ID     `db:"id" json:"id"`
	OwnerID   id.ID     `db:"owner_id" json:"-"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Type      Type      `db:"announcement_type" json:"announcementType"`
	Message   string    `db:"message" json:"message"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an active announcement.
func New(ownerID, productID id.ID, typ Type, message string) *Announcement {
	now := time.Now().UTC()
	return &Announcement{
		ID:        id.New(),
		OwnerID:   ownerID,
		ProductID: productID,
		Type:      typ,
		Message:   message,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
