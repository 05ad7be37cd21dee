// internal/core/ports/profile_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// ProfileRepository defines the persistence port for user profiles.
type ProfileRepository interface {
	Save(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	FindByToken(ctx context.Context, token string) (*domain.Profile, error)
	FindAll(ctx context.Context, page, pageSize int) ([]domain.Profile, int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error
}
