package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockpilot-be/internal/adapters/db"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/test/helpers"
)

func TestInventoryRepository_Save_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	item := helpers.CreateTestInventoryItem()

	err := repo.Save(ctx, item)
	require.NoError(t, err)
	assert.NotZero(t, item.CreatedAt)
	assert.NotZero(t, item.UpdatedAt)
}

func TestInventoryRepository_Save_DuplicateSKU_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	first := helpers.CreateTestInventoryItem()
	require.NoError(t, repo.Save(ctx, first))

	second := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = first.SKU
	})

	err := repo.Save(ctx, second)
	assert.ErrorIs(t, err, ports.ErrDuplicateSKU)
}

func TestInventoryRepository_FindByID_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	item := helpers.CreateTestInventoryItem()
	err := repo.Save(ctx, item)
	require.NoError(t, err)

	tests := []struct {
		name      string
		id        uuid.UUID
		wantError error
	}{
		{
			name: "finds_existing_item",
			id:   item.ID,
		},
		{
			name:      "not_found_for_unknown_id",
			id:        uuid.New(),
			wantError: ports.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.FindByID(ctx, tt.id)

			if tt.wantError != nil {
				assert.Nil(t, result)
				assert.True(t, errors.Is(err, tt.wantError))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.id, result.ID)
			assert.Equal(t, item.SKU, result.SKU)
			require.NotNil(t, result.SellPrice)
			assert.True(t, item.SellPrice.Equal(*result.SellPrice))
		})
	}
}

func TestInventoryRepository_FindBySKU_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	item := helpers.CreateTestInventoryItem()
	require.NoError(t, repo.Save(ctx, item))

	found, err := repo.FindBySKU(ctx, item.SKU)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	_, err = repo.FindBySKU(ctx, "NO-SUCH-SKU")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestInventoryRepository_Update_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	item := helpers.CreateTestInventoryItem()
	err := repo.Save(ctx, item)
	require.NoError(t, err)

	newPrice := decimal.NewFromFloat(12.50)
	item.Name = "Updated Name"
	item.Quantity = 2
	item.SellPrice = &newPrice
	item.Status = domain.StatusLowStock

	err = repo.Update(ctx, item)
	require.NoError(t, err)

	updated, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, domain.StatusLowStock, updated.Status)
	require.NotNil(t, updated.SellPrice)
	assert.True(t, newPrice.Equal(*updated.SellPrice))
}

func TestInventoryRepository_Delete_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	item := helpers.CreateTestInventoryItem()
	err := repo.Save(ctx, item)
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Delete(ctx, item.ID)
	require.NoError(t, err)

	exists, err = repo.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestInventoryRepository_FindAll_Filters_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		item := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
			item.SKU = fmt.Sprintf("FILTER-%03d", i+1)
			item.Name = fmt.Sprintf("Filter Widget %d", i+1)
			if i == 2 {
				item.Status = domain.StatusOrdered
			}
		})
		require.NoError(t, repo.Save(ctx, item))
	}

	items, total, err := repo.FindAll(ctx, ports.ListParams{
		Search:   "Filter Widget",
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)

	items, total, err = repo.FindAll(ctx, ports.ListParams{
		Search:   "Filter Widget",
		Status:   string(domain.StatusOrdered),
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, domain.StatusOrdered, items[0].Status)
}

func TestInventoryRepository_Counters_Unit(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewInventoryRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	low := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = "COUNT-LOW-001"
		item.Quantity = 2
		item.MinQuantity = 5
		item.Status = domain.StatusLowStock
	})
	require.NoError(t, repo.Save(ctx, low))

	ok := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = "COUNT-OK-001"
		item.Quantity = 50
		item.MinQuantity = 5
	})
	require.NoError(t, repo.Save(ctx, ok))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(2))

	lowCount, err := repo.CountLowStock(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, lowCount, int64(1))

	breakdown, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, breakdown[domain.StatusLowStock], 1)

	value, err := repo.TotalStockValue(ctx)
	require.NoError(t, err)
	assert.Greater(t, value, 0.0)
}
