// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

// InventoryService handles inventory item business logic
type InventoryService struct {
	repo   ports.InventoryRepository
	audit  ports.AuditRepository
	logger *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service
func NewInventoryService(repo ports.InventoryRepository, audit ports.AuditRepository, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		audit:  audit,
		logger: logger.With(slog.String("service", "inventory")),
	}
}

// Create validates and stores a new inventory item and records the
// creation in the audit trail.
func (s *InventoryService) Create(ctx context.Context, item *domain.InventoryItem, actorID uuid.UUID) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	item.CreatedBy = actorID
	item.PrepareForStorage()

	if err := s.repo.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionCreate,
		EntityType: domain.EntityInventoryItem,
		EntityID:   item.ID,
		NewValues: map[string]any{
			"name":     item.Name,
			"sku":      item.SKU,
			"quantity": item.Quantity,
		},
	})

	s.logger.InfoContext(ctx, "created inventory item",
		slog.String("item_id", item.ID.String()),
		slog.String("sku", item.SKU))

	return nil
}

// GetByID retrieves an inventory item by ID
func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

// Update applies a partial update. Only fields that differ from the
// stored item are written and audited; an update that changes nothing
// returns the stored item untouched and records no audit entry.
func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, update ports.ItemUpdate, actorID uuid.UUID) (*domain.InventoryItem, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	oldValues, newValues := applyItemUpdate(existing, update)
	if len(newValues) == 0 {
		return existing, nil
	}

	if err := existing.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing.UpdatedBy = &actorID
	existing.PrepareForStorage()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionUpdate,
		EntityType: domain.EntityInventoryItem,
		EntityID:   id,
		OldValues:  oldValues,
		NewValues:  newValues,
	})

	s.logger.InfoContext(ctx, "updated inventory item",
		slog.String("item_id", id.String()),
		slog.Int("changed_fields", len(newValues)))

	return existing, nil
}

// UpdateStatus changes only the item status and audits the transition.
func (s *InventoryService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus, actorID uuid.UUID) (*domain.InventoryItem, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	oldStatus := existing.Status
	existing.Status = status
	existing.UpdatedBy = &actorID
	existing.PrepareForStorage()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionStatusChange,
		EntityType: domain.EntityInventoryItem,
		EntityID:   id,
		OldValues:  map[string]any{"status": oldStatus},
		NewValues:  map[string]any{"status": status},
	})

	s.logger.InfoContext(ctx, "changed item status",
		slog.String("item_id", id.String()),
		slog.String("from", string(oldStatus)),
		slog.String("to", string(status)))

	return existing, nil
}

// Delete permanently removes an item and audits the removal with the
// name and SKU it had.
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.recordAudit(ctx, &domain.AuditLog{
		UserID:     actorID,
		Action:     domain.ActionDelete,
		EntityType: domain.EntityInventoryItem,
		EntityID:   id,
		OldValues:  map[string]any{"name": existing.Name, "sku": existing.SKU},
	})

	s.logger.InfoContext(ctx, "deleted inventory item",
		slog.String("item_id", id.String()),
		slog.String("sku", existing.SKU))

	return nil
}

// List retrieves inventory items with filtering and pagination
func (s *InventoryService) List(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}

	items, totalCount, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}

	totalPages := int(totalCount) / params.PageSize
	if int(totalCount)%params.PageSize > 0 {
		totalPages++
	}

	return &ports.ListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// recordAudit writes an audit row. Audit failures are logged and
// swallowed so a broken trail never rolls back a completed change.
func (s *InventoryService) recordAudit(ctx context.Context, log *domain.AuditLog) {
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit log",
			slog.String("entity_id", log.EntityID.String()),
			slog.String("action", string(log.Action)),
			slog.String("error", err.Error()))
	}
}

// applyItemUpdate mutates item in place with the non-nil fields of
// update that actually differ, returning the old and new values of
// every changed field keyed by column name.
func applyItemUpdate(item *domain.InventoryItem, update ports.ItemUpdate) (oldValues, newValues map[string]any) {
	oldValues = make(map[string]any)
	newValues = make(map[string]any)

	change := func(field string, oldVal, newVal any, apply func()) {
		oldValues[field] = oldVal
		newValues[field] = newVal
		apply()
	}

	if update.Name != nil && *update.Name != item.Name {
		change("name", item.Name, *update.Name, func() { item.Name = *update.Name })
	}
	if update.Description != nil && *update.Description != item.Description {
		change("description", item.Description, *update.Description, func() { item.Description = *update.Description })
	}
	if update.SKU != nil && *update.SKU != item.SKU {
		change("sku", item.SKU, *update.SKU, func() { item.SKU = *update.SKU })
	}
	if update.Quantity != nil && *update.Quantity != item.Quantity {
		change("quantity", item.Quantity, *update.Quantity, func() { item.Quantity = *update.Quantity })
	}
	if update.MinQuantity != nil && *update.MinQuantity != item.MinQuantity {
		change("min_quantity", item.MinQuantity, *update.MinQuantity, func() { item.MinQuantity = *update.MinQuantity })
	}
	if update.Unit != nil && *update.Unit != item.Unit {
		change("unit", item.Unit, *update.Unit, func() { item.Unit = *update.Unit })
	}
	if update.CategoryID != nil && !uuidPtrEqual(*update.CategoryID, item.CategoryID) {
		change("category_id", item.CategoryID, *update.CategoryID, func() { item.CategoryID = *update.CategoryID })
	}
	if update.Status != nil && *update.Status != item.Status {
		change("status", item.Status, *update.Status, func() { item.Status = *update.Status })
	}
	if update.CostPrice != nil && !decimalPtrEqual(*update.CostPrice, item.CostPrice) {
		change("cost_price", item.CostPrice, *update.CostPrice, func() { item.CostPrice = *update.CostPrice })
	}
	if update.SellPrice != nil && !decimalPtrEqual(*update.SellPrice, item.SellPrice) {
		change("sell_price", item.SellPrice, *update.SellPrice, func() { item.SellPrice = *update.SellPrice })
	}
	if update.Location != nil && *update.Location != item.Location {
		change("location", item.Location, *update.Location, func() { item.Location = *update.Location })
	}
	if update.ImageURL != nil && *update.ImageURL != item.ImageURL {
		change("image_url", item.ImageURL, *update.ImageURL, func() { item.ImageURL = *update.ImageURL })
	}

	return oldValues, newValues
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// IsNotFound reports whether err wraps the repository not-found
// sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}
