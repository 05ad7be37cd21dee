// internal/handlers/analytics.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// AnalyticsHandler handles forecast and trend endpoints
type AnalyticsHandler struct {
	service ports.AnalyticsService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service ports.AnalyticsService, cache ports.CacheRepository, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "analytics")),
	}
}

// Forecast handles GET /api/v1/analytics/forecast/{id}
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixForecast, id.String())
	var forecast domain.Forecast

	err = h.cache.GetOrSet(ctx, cacheKey, &forecast, func() (interface{}, error) {
		return h.service.Forecast(ctx, id)
	}, redis_a.TTLForecast)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to compute forecast",
			slog.String("item_id", id.String()),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to compute forecast")
		return
	}

	respondJSON(w, http.StatusOK, forecast)
}

// Trends handles GET /api/v1/analytics/trends
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixTrends, "all")
	var trends []domain.TrendPoint

	err := h.cache.GetOrSet(ctx, cacheKey, &trends, func() (interface{}, error) {
		return h.service.Trends(ctx)
	}, redis_a.TTLTrends)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to aggregate trends", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to aggregate trends")
		return
	}

	respondJSON(w, http.StatusOK, trends)
}
