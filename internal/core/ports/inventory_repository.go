// internal/core/ports/inventory_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// InventoryRepository defines the persistence port for inventory items.
// This interface is implemented by the database adapter. FindActive
// skips discontinued items; FindEvery returns all items regardless of
// status.
type InventoryRepository interface {
	Save(ctx context.Context, item *domain.InventoryItem) error
	Update(ctx context.Context, item *domain.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	FindBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error)
	FindAll(ctx context.Context, params ListParams) ([]*domain.InventoryItem, int64, error)
	FindActive(ctx context.Context) ([]domain.InventoryItem, error)
	FindEvery(ctx context.Context) ([]domain.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error)
	TotalStockValue(ctx context.Context) (float64, error)
}
