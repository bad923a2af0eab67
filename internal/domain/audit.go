package domain

import (
	"context"

	"stocktrack/internal/core/id"
)

// AuditRecorder records entity change history.
// Implemented by the infrastructure audit store; services treat failures
// as non-fatal and only log them.
type AuditRecorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}
