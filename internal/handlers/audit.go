// internal/handlers/audit.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// AuditHandler handles audit trail endpoints
type AuditHandler struct {
	service ports.AuditService
	logger  *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(service ports.AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "audit")),
	}
}

// List handles GET /api/v1/audit
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseAuditParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, total, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit logs", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to list audit logs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":      logs,
		"page":      params.Page,
		"page_size": params.PageSize,
		"total":     total,
	})
}

// parseAuditParams extracts audit filters from the query string. Date
// bounds are inclusive day boundaries.
func parseAuditParams(r *http.Request) (ports.AuditListParams, error) {
	q := r.URL.Query()

	params := ports.AuditListParams{
		EntityType: q.Get("entity_type"),
		Action:     q.Get("action"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		Page:       1,
		PageSize:   50,
	}

	for _, date := range []string{params.StartDate, params.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return params, &paramError{field: "date", value: date}
		}
	}

	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			params.PageSize = size
		}
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	return params, nil
}
