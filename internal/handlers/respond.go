// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/handlers/middleware"
)

const maxPageSize = 100

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// actorID returns the authenticated user's id. The auth middleware
// guarantees a profile on every route that reaches a handler, so a
// missing one means a wiring bug and maps to 401.
func actorID(r *http.Request) (uuid.UUID, bool) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	return profile.ID, true
}

// actorProfile returns the full authenticated profile.
func actorProfile(r *http.Request) (*domain.Profile, bool) {
	return middleware.ProfileFromContext(r.Context())
}

// parseListParams extracts pagination, filtering and sorting from the
// query string, clamping page size to a sane maximum.
func parseListParams(r *http.Request) (ports.ListParams, error) {
	q := r.URL.Query()

	params := ports.ListParams{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      1,
		PageSize:  50,
	}

	if params.Status != "" && !domain.ItemStatus(params.Status).IsValid() {
		return params, &paramError{field: "status", value: params.Status}
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, &paramError{field: "category_id", value: raw}
		}
		params.CategoryID = &id
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

type paramError struct {
	field string
	value string
}

func (e *paramError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for parameter " + e.field
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}
