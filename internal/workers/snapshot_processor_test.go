// internal/workers/snapshot_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/pkg/config"
	"github.com/ammerola/stockpilot-be/internal/workers"
	"github.com/ammerola/stockpilot-be/test/helpers"
	"github.com/ammerola/stockpilot-be/test/mocks"
)

func TestSnapshotProcessor_CaptureSnapshots(t *testing.T) {
	today := time.Now().UTC().Format(domain.SnapshotDateLayout)

	t.Run("captures_active_items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		items := []domain.InventoryItem{
			*helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) { i.Quantity = 25 }),
			*helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) { i.Quantity = 7 }),
		}

		mockItems := mocks.NewMockInventoryRepository(ctrl)
		mockItems.EXPECT().FindActive(gomock.Any()).Return(items, nil)

		mockSnapshots := mocks.NewMockSnapshotRepository(ctrl)
		mockSnapshots.EXPECT().
			UpsertBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, snapshots []domain.StockSnapshot) error {
				require.Len(t, snapshots, 2)
				assert.Equal(t, items[0].ID, snapshots[0].ItemID)
				assert.Equal(t, 25, snapshots[0].Quantity)
				assert.Equal(t, today, snapshots[0].SnapshotDate)
				assert.Equal(t, 7, snapshots[1].Quantity)
				return nil
			})

		processor := workers.NewSnapshotProcessor(mockItems, mockSnapshots, nil, helpers.TestLogger())

		err := processor.CaptureSnapshots(context.Background(), asynq.NewTask(workers.TypeSnapshotCapture, nil))
		require.NoError(t, err)
	})

	t.Run("invalidates_analytics_caches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		logger := helpers.TestLogger()
		tr := helpers.SetupTestRedis(t)
		cache := redis_a.NewCache(tr.Client, 5*time.Minute, logger)
		manager := redis_a.NewCacheManager(cache, logger)

		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, "trends:all", "stale"))
		require.NoError(t, cache.Set(ctx, "dashboard:main", "stale"))

		mockItems := mocks.NewMockInventoryRepository(ctrl)
		mockItems.EXPECT().FindActive(gomock.Any()).
			Return([]domain.InventoryItem{*helpers.CreateTestInventoryItem()}, nil)

		mockSnapshots := mocks.NewMockSnapshotRepository(ctrl)
		mockSnapshots.EXPECT().UpsertBatch(gomock.Any(), gomock.Any()).Return(nil)

		processor := workers.NewSnapshotProcessor(mockItems, mockSnapshots, manager, logger)

		err := processor.CaptureSnapshots(ctx, asynq.NewTask(workers.TypeSnapshotCapture, nil))
		require.NoError(t, err)

		var dest string
		assert.Error(t, cache.Get(ctx, "trends:all", &dest))
		assert.Error(t, cache.Get(ctx, "dashboard:main", &dest))
	})

	t.Run("no_active_items_is_a_noop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockItems := mocks.NewMockInventoryRepository(ctrl)
		mockItems.EXPECT().FindActive(gomock.Any()).Return([]domain.InventoryItem{}, nil)

		mockSnapshots := mocks.NewMockSnapshotRepository(ctrl)

		processor := workers.NewSnapshotProcessor(mockItems, mockSnapshots, nil, helpers.TestLogger())

		err := processor.CaptureSnapshots(context.Background(), asynq.NewTask(workers.TypeSnapshotCapture, nil))
		require.NoError(t, err)
	})

	t.Run("propagates_repository_errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockItems := mocks.NewMockInventoryRepository(ctrl)
		mockItems.EXPECT().FindActive(gomock.Any()).Return(nil, errors.New("connection refused"))

		mockSnapshots := mocks.NewMockSnapshotRepository(ctrl)

		processor := workers.NewSnapshotProcessor(mockItems, mockSnapshots, nil, helpers.TestLogger())

		err := processor.CaptureSnapshots(context.Background(), asynq.NewTask(workers.TypeSnapshotCapture, nil))
		assert.Error(t, err)
	})
}

func TestCleanupProcessor_CleanupOldData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &config.Config{}
	cfg.Retention.AuditLogDays = 90
	cfg.Retention.SnapshotDays = 30

	mockAudit := mocks.NewMockAuditRepository(ctrl)
	mockAudit.EXPECT().
		DeleteOlderThan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cutoff time.Time) (int64, error) {
			expected := time.Now().UTC().AddDate(0, 0, -90)
			assert.WithinDuration(t, expected, cutoff, time.Minute)
			return 12, nil
		})

	mockSnapshots := mocks.NewMockSnapshotRepository(ctrl)
	mockSnapshots.EXPECT().
		DeleteOlderThan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cutoff time.Time) (int64, error) {
			expected := time.Now().UTC().AddDate(0, 0, -30)
			assert.WithinDuration(t, expected, cutoff, time.Minute)
			return 340, nil
		})

	processor := workers.NewCleanupProcessor(mockAudit, mockSnapshots, cfg, helpers.TestLogger())

	err := processor.CleanupOldData(context.Background(), asynq.NewTask(workers.TypeCleanupOldData, nil))
	require.NoError(t, err)
}
