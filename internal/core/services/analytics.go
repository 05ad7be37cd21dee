// internal/core/services/analytics.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// lookbackDays bounds the snapshot history fed into forecasts and
// trends; older rows are noise for a 14-day projection.
const lookbackDays = 30

func lookbackSince(now time.Time) string {
	return now.UTC().AddDate(0, 0, -lookbackDays).Format(domain.SnapshotDateLayout)
}

// AnalyticsService assembles the forecast, trend and dashboard read
// models. The heavy lifting is done by the pure ComputeForecast and
// AggregateTrends functions; this service only fetches their inputs.
type AnalyticsService struct {
	items      ports.InventoryRepository
	snapshots  ports.SnapshotRepository
	categories ports.CategoryRepository
	audit      ports.AuditRepository
	logger     *slog.Logger
}

// Statically assert that *AnalyticsService implements the AnalyticsService interface.
var _ ports.AnalyticsService = (*AnalyticsService)(nil)

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	items ports.InventoryRepository,
	snapshots ports.SnapshotRepository,
	categories ports.CategoryRepository,
	audit ports.AuditRepository,
	logger *slog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		items:      items,
		snapshots:  snapshots,
		categories: categories,
		audit:      audit,
		logger:     logger.With(slog.String("service", "analytics")),
	}
}

// Forecast produces the demand forecast for one item from its last
// thirty days of snapshots.
func (s *AnalyticsService) Forecast(ctx context.Context, itemID uuid.UUID) (*domain.Forecast, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	snapshots, err := s.snapshots.FindByItem(ctx, itemID, lookbackSince(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	forecast := ComputeForecast(item, snapshots)

	s.logger.DebugContext(ctx, "computed forecast",
		slog.String("item_id", itemID.String()),
		slog.Int("snapshots", len(snapshots)),
		slog.Int("days_until_stockout", forecast.DaysUntilStockout))

	return forecast, nil
}

// Trends aggregates the last thirty days of snapshots into one point
// per date. The value lookup covers discontinued items too, since their
// old snapshots still carry value.
func (s *AnalyticsService) Trends(ctx context.Context) ([]domain.TrendPoint, error) {
	snapshots, err := s.snapshots.FindAll(ctx, lookbackSince(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	items, err := s.items.FindEvery(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	return AggregateTrends(snapshots, items), nil
}

// Overview computes the dashboard summary.
func (s *AnalyticsService) Overview(ctx context.Context) (*domain.DashboardStats, error) {
	totalItems, err := s.items.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	lowStock, err := s.items.CountLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock items: %w", err)
	}

	totalCategories, err := s.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	totalValue, err := s.items.TotalStockValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stock value: %w", err)
	}

	breakdown, err := s.items.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status breakdown: %w", err)
	}

	recent, err := s.audit.FindRecent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	return &domain.DashboardStats{
		TotalItems:      int(totalItems),
		LowStockItems:   int(lowStock),
		TotalCategories: int(totalCategories),
		TotalValue:      roundTo2(totalValue),
		RecentActivity:  recent,
		StatusBreakdown: breakdown,
	}, nil
}
