// internal/handlers/category.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	service ports.CategoryService
	manager *redis_a.CacheManager
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service ports.CategoryService, manager *redis_a.CacheManager, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		manager: manager,
		logger:  logger.With(slog.String("handler", "category")),
	}
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list categories", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// Create handles POST /api/v1/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category := req.ToDomain()
	if err := category.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Create(ctx, category, actor); err != nil {
		if errors.Is(err, ports.ErrDuplicateName) {
			respondError(w, http.StatusConflict, "A category with this name already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create category",
			slog.String("name", req.Name),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// Update handles PATCH /api/v1/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.service.Update(ctx, id, update, actor)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			respondError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, ports.ErrDuplicateName):
			respondError(w, http.StatusConflict, "A category with this name already exists")
		default:
			h.logger.ErrorContext(ctx, "failed to update category",
				slog.String("category_id", id.String()),
				slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	h.invalidateLists(r)
	respondJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /api/v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.service.Delete(ctx, id, actor); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete category",
			slog.String("category_id", id.String()),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	h.invalidateLists(r)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// invalidateLists drops cached item lists. Category names appear in
// joined list responses, so a rename or delete makes them stale.
func (h *CategoryHandler) invalidateLists(r *http.Request) {
	if h.manager == nil {
		return
	}
	if err := h.manager.InvalidateAnalytics(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "cache invalidation failed", slog.Any("error", err))
	}
}

// Request DTOs

// CategoryRequest is the payload for creating a category
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ToDomain converts the request to a domain category
func (req *CategoryRequest) ToDomain() *domain.Category {
	return &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
}

// UpdateCategoryRequest is the payload for a partial category update
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// ToUpdate validates the payload and converts it to a service update.
func (req *UpdateCategoryRequest) ToUpdate() (ports.CategoryUpdate, error) {
	update := ports.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}

	if req.Name != nil && *req.Name == "" {
		return update, fmt.Errorf("name cannot be empty")
	}
	if req.Color != nil && *req.Color != "" {
		probe := domain.Category{Name: "probe", Color: *req.Color}
		if err := probe.Validate(); err != nil {
			return update, err
		}
	}

	return update, nil
}
