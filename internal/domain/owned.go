package domain

import (
	"time"

	"stocktrack/internal/core/id"
)

// Owned is the base for all owner-scoped entities.
// Embed it in domain models; the owner_id column drives account isolation
// and the version column drives optimistic locking.
type Owned struct {
	// ID is the primary key (UUIDv7, time-ordered)
	ID id.ID `db:"id" json:"id"`

	// OwnerID references the owning user account
	OwnerID id.ID `db:"owner_id" json:"-"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewOwned creates base fields for a new owner-scoped entity.
func NewOwned(ownerID id.ID) Owned {
	now := time.Now().UTC()
	return Owned{
		ID:        id.New(),
		OwnerID:   ownerID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modification timestamp.
func (o *Owned) Touch() {
	o.UpdatedAt = time.Now().UTC()
}
