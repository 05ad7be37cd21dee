// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// InventoryHandler handles inventory item endpoints
type InventoryHandler struct {
	service ports.InventoryService
	cache   ports.CacheRepository
	manager *redis_a.CacheManager
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, cache ports.CacheRepository, manager *redis_a.CacheManager, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		cache:   cache,
		manager: manager,
		logger:  logger.With(slog.String("handler", "inventory")),
	}
}

// List handles GET /api/v1/items
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseListParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixItems, "list", r.URL.RawQuery)
	var result ports.ListResult

	err = h.cache.GetOrSet(ctx, cacheKey, &result, func() (interface{}, error) {
		return h.service.List(ctx, params)
	}, redis_a.TTLItems)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/items/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get item",
			slog.String("item_id", id.String()),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to get item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Create handles POST /api/v1/items
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := req.ToDomain()
	if err := h.service.Create(ctx, item, actor); err != nil {
		if errors.Is(err, ports.ErrDuplicateSKU) {
			respondError(w, http.StatusConflict, "An item with this SKU already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("sku", req.SKU),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	h.invalidate(r, item.ID)
	respondJSON(w, http.StatusCreated, item)
}

// Update handles PATCH /api/v1/items/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.Update(ctx, id, update, actor)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			respondError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, ports.ErrDuplicateSKU):
			respondError(w, http.StatusConflict, "An item with this SKU already exists")
		default:
			h.logger.ErrorContext(ctx, "failed to update item",
				slog.String("item_id", id.String()),
				slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "Failed to update item")
		}
		return
	}

	h.invalidate(r, id)
	respondJSON(w, http.StatusOK, item)
}

// UpdateStatus handles PATCH /api/v1/items/{id}/status
func (h *InventoryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := domain.ItemStatus(req.Status)
	if !status.IsValid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", req.Status))
		return
	}

	item, err := h.service.UpdateStatus(ctx, id, status, actor)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update item status",
			slog.String("item_id", id.String()),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to update item status")
		return
	}

	h.invalidate(r, id)
	respondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/items/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := actorID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.service.Delete(ctx, id, actor); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete item",
			slog.String("item_id", id.String()),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	h.invalidate(r, id)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

// invalidate drops every cache entry a mutation can leave stale: item
// lists, the item's forecast and the cross-item aggregates. Cache
// failures never fail the request.
func (h *InventoryHandler) invalidate(r *http.Request, itemID uuid.UUID) {
	if h.manager == nil {
		return
	}
	if err := h.manager.InvalidateItem(r.Context(), itemID.String()); err != nil {
		h.logger.WarnContext(r.Context(), "cache invalidation failed",
			slog.String("item_id", itemID.String()),
			slog.Any("error", err))
	}
}

// Request DTOs

// CreateItemRequest is the payload for creating an inventory item
type CreateItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"min_quantity"`
	Unit        string  `json:"unit"`
	CategoryID  *string `json:"category_id"`
	Status      string  `json:"status"`
	CostPrice   *string `json:"cost_price"`
	SellPrice   *string `json:"sell_price"`
	Location    string  `json:"location"`
	ImageURL    string  `json:"image_url"`
}

// Validate checks the request payload
func (req *CreateItemRequest) Validate() error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if req.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if req.MinQuantity < 0 {
		return fmt.Errorf("min_quantity cannot be negative")
	}
	if req.Status != "" && !domain.ItemStatus(req.Status).IsValid() {
		return fmt.Errorf("invalid status %q", req.Status)
	}
	if req.CategoryID != nil {
		if _, err := uuid.Parse(*req.CategoryID); err != nil {
			return fmt.Errorf("invalid category_id")
		}
	}
	for _, price := range []*string{req.CostPrice, req.SellPrice} {
		if price == nil {
			continue
		}
		d, err := decimal.NewFromString(*price)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("prices must be non-negative decimal values")
		}
	}
	return nil
}

// ToDomain converts the request to a domain item. Call Validate first.
func (req *CreateItemRequest) ToDomain() *domain.InventoryItem {
	item := &domain.InventoryItem{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Unit:        req.Unit,
		Status:      domain.ItemStatus(req.Status),
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	}

	if req.CategoryID != nil {
		id, _ := uuid.Parse(*req.CategoryID)
		item.CategoryID = &id
	}
	if req.CostPrice != nil {
		d, _ := decimal.NewFromString(*req.CostPrice)
		item.CostPrice = &d
	}
	if req.SellPrice != nil {
		d, _ := decimal.NewFromString(*req.SellPrice)
		item.SellPrice = &d
	}

	return item
}

// UpdateItemRequest is the payload for a partial item update. Absent
// fields stay untouched; explicit nulls clear nullable columns.
type UpdateItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku"`
	Quantity    *int             `json:"quantity"`
	MinQuantity *int             `json:"min_quantity"`
	Unit        *string          `json:"unit"`
	CategoryID  *json.RawMessage `json:"category_id"`
	Status      *string          `json:"status"`
	CostPrice   *json.RawMessage `json:"cost_price"`
	SellPrice   *json.RawMessage `json:"sell_price"`
	Location    *string          `json:"location"`
	ImageURL    *string          `json:"image_url"`
}

// ToUpdate validates the payload and converts it to a service update.
func (req *UpdateItemRequest) ToUpdate() (ports.ItemUpdate, error) {
	update := ports.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Unit:        req.Unit,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	}

	if req.Name != nil && *req.Name == "" {
		return update, fmt.Errorf("name cannot be empty")
	}
	if req.SKU != nil && *req.SKU == "" {
		return update, fmt.Errorf("sku cannot be empty")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return update, fmt.Errorf("quantity cannot be negative")
	}
	if req.MinQuantity != nil && *req.MinQuantity < 0 {
		return update, fmt.Errorf("min_quantity cannot be negative")
	}

	if req.Status != nil {
		status := domain.ItemStatus(*req.Status)
		if !status.IsValid() {
			return update, fmt.Errorf("invalid status %q", *req.Status)
		}
		update.Status = &status
	}

	if req.CategoryID != nil {
		var raw *string
		if err := json.Unmarshal(*req.CategoryID, &raw); err != nil {
			return update, fmt.Errorf("invalid category_id")
		}
		var id *uuid.UUID
		if raw != nil {
			parsed, err := uuid.Parse(*raw)
			if err != nil {
				return update, fmt.Errorf("invalid category_id")
			}
			id = &parsed
		}
		update.CategoryID = &id
	}

	costPrice, err := parsePriceField(req.CostPrice, "cost_price")
	if err != nil {
		return update, err
	}
	update.CostPrice = costPrice

	sellPrice, err := parsePriceField(req.SellPrice, "sell_price")
	if err != nil {
		return update, err
	}
	update.SellPrice = sellPrice

	return update, nil
}

// parsePriceField decodes a nullable decimal field. Accepts a JSON
// string, a JSON number or null.
func parsePriceField(raw *json.RawMessage, field string) (**decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}

	var value *decimal.Decimal
	if string(*raw) != "null" {
		d, err := decimal.NewFromString(trimQuotes(string(*raw)))
		if err != nil || d.IsNegative() {
			return nil, fmt.Errorf("%s must be a non-negative decimal value", field)
		}
		value = &d
	}
	return &value, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// UpdateStatusRequest is the payload for a status-only update
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
