// internal/handlers/dashboard.go
package handlers

import (
	"log/slog"
	"net/http"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// DashboardHandler handles the dashboard overview endpoint
type DashboardHandler struct {
	service ports.AnalyticsService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service ports.AnalyticsService, cache ports.CacheRepository, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "dashboard")),
	}
}

// Overview handles GET /api/v1/dashboard
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, "main")
	var stats domain.DashboardStats

	err := h.cache.GetOrSet(ctx, cacheKey, &stats, func() (interface{}, error) {
		return h.service.Overview(ctx)
	}, redis_a.TTLDashboard)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
