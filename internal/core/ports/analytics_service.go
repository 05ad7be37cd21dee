// internal/core/ports/analytics_service.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// AnalyticsService defines the application service port for the
// forecast, trend and dashboard read models.
type AnalyticsService interface {
	Forecast(ctx context.Context, itemID uuid.UUID) (*domain.Forecast, error)
	Trends(ctx context.Context) ([]domain.TrendPoint, error)
	Overview(ctx context.Context) (*domain.DashboardStats, error)
}
