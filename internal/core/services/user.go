// internal/core/services/user.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// UserService handles user administration and token authentication
type UserService struct {
	repo   ports.ProfileRepository
	audit  ports.AuditRepository
	logger *slog.Logger
}

// Statically assert that *UserService implements the UserService interface.
var _ ports.UserService = (*UserService)(nil)

// NewUserService creates a new user service
func NewUserService(repo ports.ProfileRepository, audit ports.AuditRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		audit:  audit,
		logger: logger.With(slog.String("service", "user")),
	}
}

// Authenticate resolves an opaque API token into the owning profile.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, ports.ErrNotFound
	}

	profile, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	return profile, nil
}

// List returns profiles ordered newest first.
func (s *UserService) List(ctx context.Context, page, pageSize int) ([]domain.Profile, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	profiles, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, total, nil
}

// ChangeRole updates a user's role and audits the transition.
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole, actorID uuid.UUID) (*domain.Profile, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if id == actorID {
		// An admin demoting themselves could lock everyone out.
		return nil, fmt.Errorf("cannot change own role: %w", ports.ErrForbidden)
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	oldRole := target.Role
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	target.Role = role

	if err := s.audit.Record(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionUpdate,
		EntityType: domain.EntityProfile,
		EntityID:   id,
		OldValues:  map[string]any{"role": oldRole},
		NewValues:  map[string]any{"role": role},
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit log",
			slog.String("entity_id", id.String()),
			slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "changed user role",
		slog.String("user_id", id.String()),
		slog.String("from", string(oldRole)),
		slog.String("to", string(role)))

	return target, nil
}
