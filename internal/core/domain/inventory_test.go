package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func TestInventoryItem_Validate(t *testing.T) {
	tests := []struct {
		name      string
		item      *domain.InventoryItem
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid_item_with_all_fields",
			item: &domain.InventoryItem{
				Name:        "Stainless Mixing Bowl",
				SKU:         "KIT-0042",
				Quantity:    25,
				MinQuantity: 5,
				Unit:        "pcs",
				Status:      domain.StatusInStock,
				CostPrice:   decPtr(4.50),
				SellPrice:   decPtr(9.99),
			},
			wantError: false,
		},
		{
			name: "missing_name",
			item: &domain.InventoryItem{
				SKU:  "KIT-0042",
				Unit: "pcs",
			},
			wantError: true,
			errorMsg:  "name is required",
		},
		{
			name: "missing_sku",
			item: &domain.InventoryItem{
				Name: "Test Item",
				Unit: "pcs",
			},
			wantError: true,
			errorMsg:  "sku is required",
		},
		{
			name: "sku_with_invalid_characters",
			item: &domain.InventoryItem{
				Name: "Test Item",
				SKU:  "KIT 0042!",
				Unit: "pcs",
			},
			wantError: true,
			errorMsg:  "invalid characters",
		},
		{
			name: "missing_unit",
			item: &domain.InventoryItem{
				Name: "Test Item",
				SKU:  "KIT-0042",
			},
			wantError: true,
			errorMsg:  "unit is required",
		},
		{
			name: "negative_quantity",
			item: &domain.InventoryItem{
				Name:     "Test Item",
				SKU:      "KIT-0042",
				Unit:     "pcs",
				Quantity: -3,
			},
			wantError: true,
			errorMsg:  "quantity cannot be negative",
		},
		{
			name: "negative_min_quantity",
			item: &domain.InventoryItem{
				Name:        "Test Item",
				SKU:         "KIT-0042",
				Unit:        "pcs",
				MinQuantity: -1,
			},
			wantError: true,
			errorMsg:  "min_quantity cannot be negative",
		},
		{
			name: "negative_sell_price",
			item: &domain.InventoryItem{
				Name:      "Test Item",
				SKU:       "KIT-0042",
				Unit:      "pcs",
				SellPrice: decPtr(-1),
			},
			wantError: true,
			errorMsg:  "sell_price cannot be negative",
		},
		{
			name: "unknown_status",
			item: &domain.InventoryItem{
				Name:   "Test Item",
				SKU:    "KIT-0042",
				Unit:   "pcs",
				Status: "backordered",
			},
			wantError: true,
			errorMsg:  "invalid status",
		},
		{
			name: "sets_default_status_when_empty",
			item: &domain.InventoryItem{
				Name:   "Test Item",
				SKU:    "KIT-0042",
				Unit:   "pcs",
				Status: "",
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()

			if tt.wantError {
				require.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				require.NoError(t, err)

				if tt.name == "sets_default_status_when_empty" {
					assert.Equal(t, domain.StatusInStock, tt.item.Status)
				}
			}
		})
	}
}

func TestInventoryItem_IsLowStock(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int
		minQuantity int
		want        bool
	}{
		{name: "above_minimum", quantity: 10, minQuantity: 5, want: false},
		{name: "at_minimum", quantity: 5, minQuantity: 5, want: true},
		{name: "below_minimum", quantity: 2, minQuantity: 5, want: true},
		{name: "zero_stock_zero_minimum", quantity: 0, minQuantity: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &domain.InventoryItem{Quantity: tt.quantity, MinQuantity: tt.minQuantity}
			assert.Equal(t, tt.want, item.IsLowStock())
		})
	}
}

func TestInventoryItem_StockValue(t *testing.T) {
	t.Run("multiplies_quantity_by_sell_price", func(t *testing.T) {
		item := &domain.InventoryItem{Quantity: 4, SellPrice: decPtr(9.99)}
		assert.True(t, item.StockValue().Equal(decimal.NewFromFloat(39.96)),
			"got %s", item.StockValue())
	})

	t.Run("zero_when_no_sell_price", func(t *testing.T) {
		item := &domain.InventoryItem{Quantity: 4}
		assert.True(t, item.StockValue().IsZero())
	})
}

func TestInventoryItem_PrepareForStorage(t *testing.T) {
	t.Run("generates_uuid_when_nil", func(t *testing.T) {
		item := &domain.InventoryItem{ID: uuid.Nil}

		item.PrepareForStorage()

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.NotZero(t, item.CreatedAt)
		assert.NotZero(t, item.UpdatedAt)
	})

	t.Run("preserves_existing_uuid", func(t *testing.T) {
		existingID := uuid.New()
		item := &domain.InventoryItem{ID: existingID}

		item.PrepareForStorage()

		assert.Equal(t, existingID, item.ID)
	})

	t.Run("sets_timestamps_and_default_status", func(t *testing.T) {
		item := &domain.InventoryItem{}
		now := time.Now()

		item.PrepareForStorage()

		assert.WithinDuration(t, now, item.CreatedAt, time.Second)
		assert.WithinDuration(t, now, item.UpdatedAt, time.Second)
		assert.Equal(t, domain.StatusInStock, item.Status)
	})
}

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name      string
		category  *domain.Category
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid_category",
			category:  &domain.Category{Name: "Kitchen", Color: "#3b82f6"},
			wantError: false,
		},
		{
			name:      "empty_color_allowed",
			category:  &domain.Category{Name: "Kitchen"},
			wantError: false,
		},
		{
			name:      "missing_name",
			category:  &domain.Category{Color: "#3b82f6"},
			wantError: true,
			errorMsg:  "name is required",
		},
		{
			name:      "malformed_color",
			category:  &domain.Category{Name: "Kitchen", Color: "blue"},
			wantError: true,
			errorMsg:  "hex value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()

			if tt.wantError {
				require.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRole_CanWrite(t *testing.T) {
	assert.True(t, domain.RoleAdmin.CanWrite())
	assert.True(t, domain.RoleManager.CanWrite())
	assert.False(t, domain.RoleViewer.CanWrite())
	assert.False(t, domain.UserRole("guest").CanWrite())
}

// Benchmarks
func BenchmarkInventoryItem_Validate(b *testing.B) {
	item := &domain.InventoryItem{
		Name:     "Test Item",
		SKU:      "KIT-0042",
		Unit:     "pcs",
		Quantity: 25,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = item.Validate()
	}
}
