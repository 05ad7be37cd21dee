// internal/core/ports/category_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// CategoryRepository defines the persistence port for categories.
type CategoryRepository interface {
	Save(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
