// internal/adapters/db/snapshot_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// id and created_at come from the column defaults so callers can hand
// in zero-valued structs; RETURNING feeds them back.
const upsertSnapshotQuery = `
	INSERT INTO stock_snapshots (item_id, quantity, snapshot_date)
	VALUES ($1, $2, $3)
	ON CONFLICT (item_id, snapshot_date)
	DO UPDATE SET quantity = EXCLUDED.quantity
	RETURNING id, created_at`

// snapshotRepository implements ports.SnapshotRepository
type snapshotRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSnapshotRepository creates a new stock snapshot repository
func NewSnapshotRepository(db *Database, logger *slog.Logger) ports.SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "snapshot")),
	}
}

// Upsert writes one snapshot, replacing the quantity when a row for the
// same item and date already exists.
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.StockSnapshot) error {
	err := r.db.QueryRow(ctx, upsertSnapshotQuery,
		snapshot.ItemID, snapshot.Quantity, snapshot.SnapshotDate,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// UpsertBatch writes many snapshots in a single transaction
func (r *snapshotRepository) UpsertBatch(ctx context.Context, snapshots []domain.StockSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for i := range snapshots {
			batch.Queue(upsertSnapshotQuery,
				snapshots[i].ItemID, snapshots[i].Quantity, snapshots[i].SnapshotDate,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range snapshots {
			err := br.QueryRow().Scan(&snapshots[i].ID, &snapshots[i].CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert snapshot %d: %w", i, err)
			}
		}

		return nil
	})
}

// FindByItem retrieves an item's snapshots in date order. A non-empty
// since (YYYY-MM-DD) keeps only snapshots dated on or after it.
func (r *snapshotRepository) FindByItem(ctx context.Context, itemID uuid.UUID, since string) ([]domain.StockSnapshot, error) {
	query := `
		SELECT id, item_id, quantity, to_char(snapshot_date, 'YYYY-MM-DD'), created_at
		FROM stock_snapshots
		WHERE item_id = $1`
	args := []any{itemID}
	if since != "" {
		query += ` AND snapshot_date >= $2`
		args = append(args, since)
	}
	query += ` ORDER BY snapshot_date`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// FindAll retrieves snapshots for every item ordered by date then item,
// optionally limited to dates on or after since (YYYY-MM-DD).
func (r *snapshotRepository) FindAll(ctx context.Context, since string) ([]domain.StockSnapshot, error) {
	query := `
		SELECT id, item_id, quantity, to_char(snapshot_date, 'YYYY-MM-DD'), created_at
		FROM stock_snapshots`
	var args []any
	if since != "" {
		query += ` WHERE snapshot_date >= $1`
		args = append(args, since)
	}
	query += ` ORDER BY snapshot_date, item_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// DeleteOlderThan removes snapshots dated before the cutoff and returns
// how many rows were dropped.
func (r *snapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM stock_snapshots WHERE snapshot_date < $1`,
		cutoff.Format(domain.SnapshotDateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}

	deleted := tag.RowsAffected()
	if deleted > 0 {
		r.logger.InfoContext(ctx, "old snapshots removed",
			slog.Int64("count", deleted),
			slog.String("cutoff", cutoff.Format(domain.SnapshotDateLayout)))
	}

	return deleted, nil
}

func scanSnapshots(rows pgx.Rows) ([]domain.StockSnapshot, error) {
	var snapshots []domain.StockSnapshot
	for rows.Next() {
		var (
			s         domain.StockSnapshot
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&s.ID, &s.ItemID, &s.Quantity, &s.SnapshotDate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.CreatedAt = createdAt.Time
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshots, nil
}
