// internal/handlers/users.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	service ports.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service ports.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "users")),
	}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := actorProfile(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, pageSize := 1, 50
	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if s, err := strconv.Atoi(raw); err == nil && s > 0 {
			pageSize = s
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := h.service.List(ctx, page, pageSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":      users,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// ChangeRole handles PATCH /api/v1/users/{id}/role
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role := domain.UserRole(req.Role)
	if !role.IsValid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid role %q", req.Role))
		return
	}

	profile, err := h.service.ChangeRole(ctx, id, role, actor)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ports.ErrForbidden):
			respondError(w, http.StatusForbidden, "Cannot change your own role")
		default:
			h.logger.ErrorContext(ctx, "failed to change role",
				slog.String("user_id", id.String()),
				slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "Failed to change role")
		}
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// ChangeRoleRequest is the payload for a role change
type ChangeRoleRequest struct {
	Role string `json:"role"`
}
