// internal/workers/analytics_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// AnalyticsProcessor recomputes the dashboard and trend read models
// and warms their cache entries so the first request after a refresh
// doesn't pay the aggregation cost.
type AnalyticsProcessor struct {
	service ports.AnalyticsService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewAnalyticsProcessor creates a new analytics processor
func NewAnalyticsProcessor(service ports.AnalyticsService, cache ports.CacheRepository, logger *slog.Logger) *AnalyticsProcessor {
	return &AnalyticsProcessor{
		service: service,
		cache:   cache,
		logger:  logger.With(slog.String("processor", "analytics")),
	}
}

// RefreshAnalytics handles the analytics:refresh task.
func (p *AnalyticsProcessor) RefreshAnalytics(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	p.logger.InfoContext(ctx, "refreshing analytics caches")

	stats, err := p.service.Overview(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	trends, err := p.service.Trends(ctx)
	if err != nil {
		return fmt.Errorf("failed to aggregate trends: %w", err)
	}

	dashboardKey := redis_a.BuildKey(redis_a.PrefixDashboard, "main")
	if err := p.cache.SetWithTTL(ctx, dashboardKey, stats, redis_a.TTLDashboard); err != nil {
		p.logger.WarnContext(ctx, "failed to warm dashboard cache", slog.Any("error", err))
	}

	trendsKey := redis_a.BuildKey(redis_a.PrefixTrends, "all")
	if err := p.cache.SetWithTTL(ctx, trendsKey, trends, redis_a.TTLTrends); err != nil {
		p.logger.WarnContext(ctx, "failed to warm trends cache", slog.Any("error", err))
	}

	p.logger.InfoContext(ctx, "analytics caches refreshed",
		slog.Int("trend_points", len(trends)),
		slog.Int("total_items", stats.TotalItems),
		slog.Duration("duration", time.Since(start)))

	return nil
}
