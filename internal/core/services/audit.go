// internal/core/services/audit.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// AuditLogService exposes the audit trail for reading
type AuditLogService struct {
	repo   ports.AuditRepository
	logger *slog.Logger
}

// Statically assert that *AuditLogService implements the AuditService interface.
var _ ports.AuditService = (*AuditLogService)(nil)

// NewAuditLogService creates a new audit log service
func NewAuditLogService(repo ports.AuditRepository, logger *slog.Logger) *AuditLogService {
	return &AuditLogService{
		repo:   repo,
		logger: logger.With(slog.String("service", "audit")),
	}
}

// List returns audit logs newest first, filtered and paginated.
func (s *AuditLogService) List(ctx context.Context, params ports.AuditListParams) ([]domain.AuditLog, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}

	logs, total, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
