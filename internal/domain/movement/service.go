package movement

import (
	"context"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
)

// Service provides read access to the movement ledger.
type Service struct {
	repo Repository
}

// NewService creates a new movement service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves one of the owner's movements.
func (s *Service) GetByID(ctx context.Context, ownerID, movementID id.ID) (*WithProduct, error) {
	return s.repo.GetByID(ctx, ownerID, movementID)
}

// List retrieves the owner's movements.
func (s *Service) List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*WithProduct], error) {
	if filter.Type != nil && !filter.Type.IsValid() {
		return domain.ListResult[*WithProduct]{}, apperror.NewValidation("invalid movement type").
			WithDetail("field", "movementType").
			WithDetail("value", string(*filter.Type))
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	return s.repo.List(ctx, ownerID, filter)
}
