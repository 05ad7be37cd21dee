// internal/core/ports/snapshot_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// SnapshotRepository defines the persistence port for daily stock
// snapshots. Upsert replaces an existing row for the same item and
// date so a re-run of the capture job stays idempotent. The finders
// take an inclusive lower date bound (YYYY-MM-DD); an empty since
// returns the full history.
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *domain.StockSnapshot) error
	UpsertBatch(ctx context.Context, snapshots []domain.StockSnapshot) error
	FindByItem(ctx context.Context, itemID uuid.UUID, since string) ([]domain.StockSnapshot, error)
	FindAll(ctx context.Context, since string) ([]domain.StockSnapshot, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
