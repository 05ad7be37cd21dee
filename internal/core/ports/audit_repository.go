// internal/core/ports/audit_repository.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// AuditListParams holds filters for listing audit logs
type AuditListParams struct {
	EntityType string
	Action     string
	StartDate  string
	EndDate    string
	Page       int
	PageSize   int
}

// AuditRepository defines the persistence port for audit logs. Record
// goes through the log_audit SQL function so writes stay uniform with
// the in-database triggers.
type AuditRepository interface {
	Record(ctx context.Context, log *domain.AuditLog) error
	FindAll(ctx context.Context, params AuditListParams) ([]domain.AuditLog, int64, error)
	FindRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
