// internal/core/services/analytics_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/core/services"
	"github.com/ammerola/stockpilot-be/test/helpers"
	"github.com/ammerola/stockpilot-be/test/mocks"
)

type analyticsMocks struct {
	items      *mocks.MockInventoryRepository
	snapshots  *mocks.MockSnapshotRepository
	categories *mocks.MockCategoryRepository
	audit      *mocks.MockAuditRepository
}

func newAnalyticsService(t *testing.T) (*services.AnalyticsService, analyticsMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := analyticsMocks{
		items:      mocks.NewMockInventoryRepository(ctrl),
		snapshots:  mocks.NewMockSnapshotRepository(ctrl),
		categories: mocks.NewMockCategoryRepository(ctrl),
		audit:      mocks.NewMockAuditRepository(ctrl),
	}
	svc := services.NewAnalyticsService(m.items, m.snapshots, m.categories, m.audit, helpers.TestLogger())
	return svc, m
}

func TestAnalyticsService_Forecast(t *testing.T) {
	t.Run("computes_forecast_from_item_history", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		item := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.Quantity = 70
		})
		snaps := helpers.CreateTestSnapshots(item.ID, "2024-01-30", 100, 90, 80, 70)

		m.items.EXPECT().FindByID(gomock.Any(), item.ID).Return(item, nil)
		m.snapshots.EXPECT().FindByItem(gomock.Any(), item.ID, gomock.Any()).Return(snaps, nil)

		forecast, err := svc.Forecast(context.Background(), item.ID)

		require.NoError(t, err)
		assert.Equal(t, item.ID, forecast.ItemID)
		assert.Equal(t, 10.0, forecast.AvgDailyConsumption)
		assert.Equal(t, 7, forecast.DaysUntilStockout)
		assert.True(t, forecast.ReorderSuggested)
	})

	t.Run("limits_history_to_thirty_days", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		item := helpers.CreateTestInventoryItem()
		m.items.EXPECT().FindByID(gomock.Any(), item.ID).Return(item, nil)
		m.snapshots.EXPECT().FindByItem(gomock.Any(), item.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, since string) ([]domain.StockSnapshot, error) {
				got, err := time.Parse(domain.SnapshotDateLayout, since)
				require.NoError(t, err)
				want := time.Now().UTC().AddDate(0, 0, -30)
				assert.WithinDuration(t, want, got, 48*time.Hour)
				return nil, nil
			})

		_, err := svc.Forecast(context.Background(), item.ID)
		require.NoError(t, err)
	})

	t.Run("missing_item_propagates_not_found", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		m.items.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, ports.ErrNotFound)

		_, err := svc.Forecast(context.Background(), uuid.New())

		require.Error(t, err)
		assert.True(t, errors.Is(err, ports.ErrNotFound))
	})

	t.Run("snapshot_load_failure_is_wrapped", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		item := helpers.CreateTestInventoryItem()
		m.items.EXPECT().FindByID(gomock.Any(), item.ID).Return(item, nil)
		m.snapshots.EXPECT().FindByItem(gomock.Any(), item.ID, gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := svc.Forecast(context.Background(), item.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load snapshots")
	})
}

func TestAnalyticsService_Trends(t *testing.T) {
	t.Run("aggregates_across_items", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		itemA := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.SellPrice = decPtr(2.0)
			i.MinQuantity = 1
		})
		// A discontinued item's snapshots still price into the series.
		itemB := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.SellPrice = decPtr(10.0)
			i.MinQuantity = 10
			i.Status = domain.StatusDiscontinued
		})

		snaps := []domain.StockSnapshot{
			{ItemID: itemA.ID, Quantity: 5, SnapshotDate: "2024-01-30"},
			{ItemID: itemB.ID, Quantity: 3, SnapshotDate: "2024-01-30"},
		}

		m.snapshots.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(snaps, nil)
		m.items.EXPECT().FindEvery(gomock.Any()).Return([]domain.InventoryItem{*itemA, *itemB}, nil)

		trends, err := svc.Trends(context.Background())

		require.NoError(t, err)
		require.Len(t, trends, 1)
		assert.Equal(t, 8, trends[0].TotalQuantity)
		assert.Equal(t, 40.0, trends[0].TotalValue)
		assert.Equal(t, 1, trends[0].LowStockCount)
	})

	t.Run("empty_history_yields_empty_trends", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		m.snapshots.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.items.EXPECT().FindEvery(gomock.Any()).Return(nil, nil)

		trends, err := svc.Trends(context.Background())

		require.NoError(t, err)
		assert.Empty(t, trends)
	})
}

func TestAnalyticsService_Overview(t *testing.T) {
	t.Run("assembles_dashboard_stats", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		recent := []domain.AuditLog{{ID: uuid.New(), Action: domain.ActionCreate}}

		m.items.EXPECT().Count(gomock.Any()).Return(int64(42), nil)
		m.items.EXPECT().CountLowStock(gomock.Any()).Return(int64(7), nil)
		m.categories.EXPECT().Count(gomock.Any()).Return(int64(5), nil)
		m.items.EXPECT().TotalStockValue(gomock.Any()).Return(1234.567, nil)
		m.items.EXPECT().CountByStatus(gomock.Any()).Return(map[domain.ItemStatus]int{
			domain.StatusInStock:  35,
			domain.StatusLowStock: 7,
		}, nil)
		m.audit.EXPECT().FindRecent(gomock.Any(), 10).Return(recent, nil)

		stats, err := svc.Overview(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 42, stats.TotalItems)
		assert.Equal(t, 7, stats.LowStockItems)
		assert.Equal(t, 5, stats.TotalCategories)
		assert.Equal(t, 1234.57, stats.TotalValue)
		assert.Equal(t, recent, stats.RecentActivity)
		assert.Equal(t, 35, stats.StatusBreakdown[domain.StatusInStock])
	})

	t.Run("count_failure_is_wrapped", func(t *testing.T) {
		svc, m := newAnalyticsService(t)

		m.items.EXPECT().Count(gomock.Any()).Return(int64(0), errors.New("timeout"))

		_, err := svc.Overview(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count items")
	})
}
