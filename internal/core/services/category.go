// internal/core/services/category.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// CategoryService handles category business logic
type CategoryService struct {
	repo   ports.CategoryRepository
	audit  ports.AuditRepository
	logger *slog.Logger
}

// Statically assert that *CategoryService implements the CategoryService interface.
var _ ports.CategoryService = (*CategoryService)(nil)

// NewCategoryService creates a new category service
func NewCategoryService(repo ports.CategoryRepository, audit ports.AuditRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		audit:  audit,
		logger: logger.With(slog.String("service", "category")),
	}
}

// Create validates and stores a new category.
func (s *CategoryService) Create(ctx context.Context, category *domain.Category, actorID uuid.UUID) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	category.CreatedBy = actorID
	category.PrepareForStorage()

	if err := s.repo.Save(ctx, category); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionCreate,
		EntityType: domain.EntityCategory,
		EntityID:   category.ID,
		NewValues:  map[string]any{"name": category.Name},
	})

	s.logger.InfoContext(ctx, "created category",
		slog.String("category_id", category.ID.String()),
		slog.String("name", category.Name))

	return nil
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update applies a partial update; unchanged fields write no audit
// entry and a no-op update returns the stored category as is.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, update ports.CategoryUpdate, actorID uuid.UUID) (*domain.Category, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	oldValues := make(map[string]any)
	newValues := make(map[string]any)

	if update.Name != nil && *update.Name != existing.Name {
		oldValues["name"], newValues["name"] = existing.Name, *update.Name
		existing.Name = *update.Name
	}
	if update.Description != nil && *update.Description != existing.Description {
		oldValues["description"], newValues["description"] = existing.Description, *update.Description
		existing.Description = *update.Description
	}
	if update.Color != nil && *update.Color != existing.Color {
		oldValues["color"], newValues["color"] = existing.Color, *update.Color
		existing.Color = *update.Color
	}

	if len(newValues) == 0 {
		return existing, nil
	}

	if err := existing.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing.PrepareForStorage()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionUpdate,
		EntityType: domain.EntityCategory,
		EntityID:   id,
		OldValues:  oldValues,
		NewValues:  newValues,
	})

	s.logger.InfoContext(ctx, "updated category",
		slog.String("category_id", id.String()))

	return existing, nil
}

// Delete removes a category; items keep a null category afterwards.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionDelete,
		EntityType: domain.EntityCategory,
		EntityID:   id,
		OldValues:  map[string]any{"name": existing.Name},
	})

	s.logger.InfoContext(ctx, "deleted category",
		slog.String("category_id", id.String()),
		slog.String("name", existing.Name))

	return nil
}

func (s *CategoryService) recordAudit(ctx context.Context, log *domain.AuditLog) {
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit log",
			slog.String("entity_id", log.EntityID.String()),
			slog.String("action", string(log.Action)),
			slog.String("error", err.Error()))
	}
}
