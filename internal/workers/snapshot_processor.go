// internal/workers/snapshot_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// SnapshotProcessor records the daily stock snapshot used by the
// forecast engine. Discontinued items are skipped; re-running the task
// on the same day overwrites that day's rows instead of duplicating.
type SnapshotProcessor struct {
	items     ports.InventoryRepository
	snapshots ports.SnapshotRepository
	manager   *redis_a.CacheManager
	logger    *slog.Logger
}

// NewSnapshotProcessor creates a new snapshot processor
func NewSnapshotProcessor(
	items ports.InventoryRepository,
	snapshots ports.SnapshotRepository,
	manager *redis_a.CacheManager,
	logger *slog.Logger,
) *SnapshotProcessor {
	return &SnapshotProcessor{
		items:     items,
		snapshots: snapshots,
		manager:   manager,
		logger:    logger.With(slog.String("processor", "snapshot")),
	}
}

// CaptureSnapshots handles the snapshot:capture task.
func (p *SnapshotProcessor) CaptureSnapshots(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	today := time.Now().UTC().Format(domain.SnapshotDateLayout)

	p.logger.InfoContext(ctx, "capturing stock snapshots",
		slog.String("snapshot_date", today))

	items, err := p.items.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active items: %w", err)
	}

	if len(items) == 0 {
		p.logger.InfoContext(ctx, "no active items to snapshot")
		return nil
	}

	snapshots := make([]domain.StockSnapshot, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, domain.StockSnapshot{
			ItemID:       item.ID,
			Quantity:     item.Quantity,
			SnapshotDate: today,
		})
	}

	if err := p.snapshots.UpsertBatch(ctx, snapshots); err != nil {
		return fmt.Errorf("failed to upsert snapshots: %w", err)
	}

	// Fresh snapshots change every forecast and trend series
	if p.manager != nil {
		if err := p.manager.InvalidateAnalytics(ctx); err != nil {
			p.logger.WarnContext(ctx, "cache invalidation failed", slog.Any("error", err))
		}
	}

	p.logger.InfoContext(ctx, "stock snapshots captured",
		slog.Int("items", len(snapshots)),
		slog.Duration("duration", time.Since(start)))

	return nil
}
