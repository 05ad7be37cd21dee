// internal/core/ports/category_service.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// CategoryUpdate carries a partial category update. Nil fields are
// left untouched.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// CategoryService defines the application service port for categories.
type CategoryService interface {
	Create(ctx context.Context, category *domain.Category, actorID uuid.UUID) error
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, update CategoryUpdate, actorID uuid.UUID) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
}

// UserService defines the application service port for user
// administration.
type UserService interface {
	Authenticate(ctx context.Context, token string) (*domain.Profile, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Profile, int64, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole, actorID uuid.UUID) (*domain.Profile, error)
}

// AuditService defines the application service port for reading the
// audit trail.
type AuditService interface {
	List(ctx context.Context, params AuditListParams) ([]domain.AuditLog, int64, error)
}
