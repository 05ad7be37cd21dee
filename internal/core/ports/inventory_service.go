// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// InventoryService defines the application service port for inventory
// items. Every mutation takes the acting user's id so the change can be
// attributed and audited.
type InventoryService interface {
	Create(ctx context.Context, item *domain.InventoryItem, actorID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	Update(ctx context.Context, id uuid.UUID, update ItemUpdate, actorID uuid.UUID) (*domain.InventoryItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus, actorID uuid.UUID) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ItemUpdate carries a partial update. Nil fields are left untouched;
// for nullable columns the inner pointer clears the value.
type ItemUpdate struct {
	Name        *string
	Description *string
	SKU         *string
	Quantity    *int
	MinQuantity *int
	Unit        *string
	CategoryID  **uuid.UUID
	Status      *domain.ItemStatus
	CostPrice   **decimal.Decimal
	SellPrice   **decimal.Decimal
	Location    *string
	ImageURL    *string
}

// ListParams holds parameters for listing inventory
type ListParams struct {
	Search     string
	CategoryID *uuid.UUID
	Status     string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// ListResult holds the result of listing inventory
type ListResult struct {
	Items      []*domain.InventoryItem `json:"data"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalCount int64                   `json:"total"`
	TotalPages int                     `json:"total_pages"`
}
