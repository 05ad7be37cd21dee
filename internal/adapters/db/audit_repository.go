// internal/adapters/db/audit_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// auditRepository implements ports.AuditRepository
type auditRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *Database, logger *slog.Logger) ports.AuditRepository {
	return &auditRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "audit")),
	}
}

// Record writes one audit entry through the log_audit SQL function so
// application writes stay uniform with in-database triggers.
func (r *auditRepository) Record(ctx context.Context, log *domain.AuditLog) error {
	oldValues, err := marshalValues(log.OldValues)
	if err != nil {
		return fmt.Errorf("failed to encode old values: %w", err)
	}
	newValues, err := marshalValues(log.NewValues)
	if err != nil {
		return fmt.Errorf("failed to encode new values: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT log_audit($1, $2, $3, $4, $5, $6)`,
		log.UserID, log.Action, log.EntityType, log.EntityID,
		oldValues, newValues,
	).Scan(&log.ID)

	if err != nil {
		return fmt.Errorf("failed to record audit log: %w", err)
	}

	return nil
}

// FindAll retrieves audit logs with filtering, newest first, with the
// acting user's profile joined in.
func (r *auditRepository) FindAll(ctx context.Context, params ports.AuditListParams) ([]domain.AuditLog, int64, error) {
	var filters []squirrel.Sqlizer
	if params.EntityType != "" {
		filters = append(filters, squirrel.Eq{"a.entity_type": params.EntityType})
	}
	if params.Action != "" {
		filters = append(filters, squirrel.Eq{"a.action": params.Action})
	}
	if params.StartDate != "" {
		filters = append(filters, squirrel.GtOrEq{"a.created_at": params.StartDate})
	}
	if params.EndDate != "" {
		filters = append(filters, squirrel.LtOrEq{"a.created_at": params.EndDate})
	}

	qb := squirrel.Select(
		"a.id", "a.user_id", "a.action", "a.entity_type", "a.entity_id",
		"a.old_values", "a.new_values", "a.created_at",
		"p.email", "p.full_name", "p.role",
	).From("audit_logs a").
		LeftJoin("profiles p ON p.id = a.user_id").
		PlaceholderFormat(squirrel.Dollar)

	countQb := squirrel.Select("COUNT(*)").
		From("audit_logs a").
		PlaceholderFormat(squirrel.Dollar)

	for _, f := range filters {
		qb = qb.Where(f)
		countQb = countQb.Where(f)
	}

	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	qb = qb.OrderBy("a.created_at DESC")
	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize)).
			Offset(uint64((params.Page - 1) * params.PageSize))
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs, err := scanAuditLogs(rows, true)
	if err != nil {
		return nil, 0, err
	}

	return logs, totalCount, nil
}

// FindRecent retrieves the newest audit entries for dashboard activity
func (r *auditRepository) FindRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	query := `
		SELECT a.id, a.user_id, a.action, a.entity_type, a.entity_id,
			a.old_values, a.new_values, a.created_at,
			p.email, p.full_name, p.role
		FROM audit_logs a
		LEFT JOIN profiles p ON p.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent audit logs: %w", err)
	}
	defer rows.Close()

	return scanAuditLogs(rows, true)
}

// DeleteOlderThan removes audit entries older than the cutoff
func (r *auditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", err)
	}

	deleted := tag.RowsAffected()
	if deleted > 0 {
		r.logger.InfoContext(ctx, "old audit logs removed",
			slog.Int64("count", deleted))
	}

	return deleted, nil
}

func scanAuditLogs(rows pgx.Rows, withProfile bool) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	for rows.Next() {
		var (
			entry     domain.AuditLog
			oldValues []byte
			newValues []byte
			createdAt pgtype.Timestamptz
			email     sql.NullString
			fullName  sql.NullString
			role      sql.NullString
		)

		dests := []any{
			&entry.ID, &entry.UserID, &entry.Action, &entry.EntityType,
			&entry.EntityID, &oldValues, &newValues, &createdAt,
		}
		if withProfile {
			dests = append(dests, &email, &fullName, &role)
		}

		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		entry.CreatedAt = createdAt.Time
		if len(oldValues) > 0 {
			if err := json.Unmarshal(oldValues, &entry.OldValues); err != nil {
				return nil, fmt.Errorf("failed to decode old values: %w", err)
			}
		}
		if len(newValues) > 0 {
			if err := json.Unmarshal(newValues, &entry.NewValues); err != nil {
				return nil, fmt.Errorf("failed to decode new values: %w", err)
			}
		}
		if email.Valid {
			entry.User = &domain.Profile{
				ID:       entry.UserID,
				Email:    email.String,
				FullName: fullName.String,
				Role:     domain.UserRole(role.String),
			}
		}

		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}

// marshalValues encodes an audit value map as JSON, keeping NULL in the
// database when there is nothing to record.
func marshalValues(values map[string]any) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return json.Marshal(values)
}
