// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/pkg/config"
)

// CleanupProcessor prunes audit logs and stock snapshots that have
// aged past the configured retention windows.
type CleanupProcessor struct {
	audit     ports.AuditRepository
	snapshots ports.SnapshotRepository
	config    *config.Config
	logger    *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(
	audit ports.AuditRepository,
	snapshots ports.SnapshotRepository,
	cfg *config.Config,
	logger *slog.Logger,
) *CleanupProcessor {
	return &CleanupProcessor{
		audit:     audit,
		snapshots: snapshots,
		config:    cfg,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldData handles the cleanup:old_data task.
func (p *CleanupProcessor) CleanupOldData(ctx context.Context, t *asynq.Task) error {
	now := time.Now().UTC()

	auditCutoff := now.AddDate(0, 0, -p.config.Retention.AuditLogDays)
	snapshotCutoff := now.AddDate(0, 0, -p.config.Retention.SnapshotDays)

	p.logger.InfoContext(ctx, "cleaning up old data",
		slog.Time("audit_cutoff", auditCutoff),
		slog.Time("snapshot_cutoff", snapshotCutoff))

	auditDeleted, err := p.audit.DeleteOlderThan(ctx, auditCutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	snapshotsDeleted, err := p.snapshots.DeleteOlderThan(ctx, snapshotCutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup snapshots: %w", err)
	}

	p.logger.InfoContext(ctx, "old data cleaned up",
		slog.Int64("audit_logs_deleted", auditDeleted),
		slog.Int64("snapshots_deleted", snapshotsDeleted))

	return nil
}
