package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/services"
)

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func snapshotSeries(itemID uuid.UUID, startDate string, quantities ...int) []domain.StockSnapshot {
	snaps := make([]domain.StockSnapshot, 0, len(quantities))
	date, err := time.Parse(domain.SnapshotDateLayout, startDate)
	if err != nil {
		panic(err)
	}
	for i, q := range quantities {
		snaps = append(snaps, domain.StockSnapshot{
			ID:           uuid.New(),
			ItemID:       itemID,
			Quantity:     q,
			SnapshotDate: date.AddDate(0, 0, i).Format(domain.SnapshotDateLayout),
		})
	}
	return snaps
}

func TestComputeForecast_InsufficientHistory(t *testing.T) {
	item := &domain.InventoryItem{
		ID:          uuid.New(),
		Name:        "Paper Towels",
		Quantity:    40,
		MinQuantity: 10,
	}

	tests := []struct {
		name      string
		snapshots []domain.StockSnapshot
	}{
		{name: "no_snapshots", snapshots: nil},
		{name: "single_snapshot", snapshots: snapshotSeries(item.ID, "2024-01-30", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecast := services.ComputeForecast(item, tt.snapshots)

			assert.Equal(t, 0.0, forecast.AvgDailyConsumption)
			assert.Equal(t, services.StockoutIndeterminate, forecast.DaysUntilStockout)
			assert.False(t, forecast.ReorderSuggested)
			require.Len(t, forecast.Data, len(tt.snapshots))
			for i, point := range forecast.Data {
				assert.Equal(t, tt.snapshots[i].Quantity, point.Quantity)
				assert.Nil(t, point.Predicted)
			}
		})
	}
}

func TestComputeForecast_ConstantDecline(t *testing.T) {
	// With a constant daily drop both estimators agree, so the blended
	// rate must equal the drop exactly.
	item := &domain.InventoryItem{
		ID:          uuid.New(),
		Name:        "Coffee Beans",
		Quantity:    70,
		MinQuantity: 10,
	}
	snaps := snapshotSeries(item.ID, "2024-01-27", 100, 90, 80, 70)

	forecast := services.ComputeForecast(item, snaps)

	assert.Equal(t, 10.0, forecast.AvgDailyConsumption)
	assert.Equal(t, 7, forecast.DaysUntilStockout)
	assert.True(t, forecast.ReorderSuggested)
}

func TestComputeForecast_RisingSeries(t *testing.T) {
	item := &domain.InventoryItem{
		ID:       uuid.New(),
		Name:     "Printer Ink",
		Quantity: 90,
	}
	snaps := snapshotSeries(item.ID, "2024-01-26", 10, 30, 50, 70, 90)

	forecast := services.ComputeForecast(item, snaps)

	assert.Equal(t, services.StockoutIndeterminate, forecast.DaysUntilStockout)
	assert.False(t, forecast.ReorderSuggested)
	assert.Equal(t, 0.0, forecast.AvgDailyConsumption)

	// A rising trend still projects, climbing 10/day off the last
	// observed quantity.
	require.Len(t, forecast.Data, len(snaps)+14)
	projected := forecast.Data[len(snaps):]
	assert.Equal(t, "2024-01-31", projected[0].Date)
	assert.Equal(t, 100, projected[0].Quantity)
	require.NotNil(t, projected[0].Predicted)
	assert.Equal(t, 230, projected[len(projected)-1].Quantity)
}

func TestComputeForecast_Projection(t *testing.T) {
	// On-hand quantity has moved past the last snapshot; the stockout
	// horizon follows the live quantity while the projection continues
	// from where the recorded series left off.
	item := &domain.InventoryItem{
		ID:          uuid.New(),
		Name:        "Dish Soap",
		Quantity:    200,
		MinQuantity: 15,
	}
	// Constant decline of 10/day ending 2024-01-30 at 70.
	snaps := snapshotSeries(item.ID, "2024-01-27", 100, 90, 80, 70)

	forecast := services.ComputeForecast(item, snaps)

	assert.Equal(t, 20, forecast.DaysUntilStockout)
	require.Len(t, forecast.Data, len(snaps)+14)
	projected := forecast.Data[len(snaps):]

	first := projected[0]
	assert.Equal(t, "2024-01-31", first.Date)
	assert.Equal(t, 60, first.Quantity)
	require.NotNil(t, first.Predicted)
	assert.Equal(t, 60, *first.Predicted)

	// Drains 10 per day and clamps at zero, never negative.
	wantQuantities := []int{60, 50, 40, 30, 20, 10, 0, 0, 0, 0, 0, 0, 0, 0}
	for i, point := range projected {
		assert.Equal(t, wantQuantities[i], point.Quantity, "day %d", i+1)
		require.NotNil(t, point.Predicted)
		assert.Equal(t, point.Quantity, *point.Predicted)
	}
	assert.Equal(t, "2024-02-13", projected[len(projected)-1].Date)
}

func TestComputeForecast_ShortWindowHistory(t *testing.T) {
	// Two snapshots yield a single delta; the moving average window
	// shrinks to whatever history exists.
	item := &domain.InventoryItem{
		ID:       uuid.New(),
		Name:     "Trash Bags",
		Quantity: 16,
	}
	snaps := snapshotSeries(item.ID, "2024-01-29", 20, 16)

	forecast := services.ComputeForecast(item, snaps)

	// movingAvg = 4, slope = -4, blend = 4.
	assert.Equal(t, 4.0, forecast.AvgDailyConsumption)
	assert.Equal(t, 4, forecast.DaysUntilStockout)
	assert.True(t, forecast.ReorderSuggested)
}

func TestComputeForecast_RoundsRateToTwoDecimals(t *testing.T) {
	item := &domain.InventoryItem{
		ID:       uuid.New(),
		Name:     "Hand Sanitizer",
		Quantity: 69,
	}
	// Deltas 7, 17, 7: movingAvg = 31/3, regression magnitude = 11,
	// blend = 10.666... and must come out as 10.67.
	snaps := snapshotSeries(item.ID, "2024-01-27", 100, 93, 76, 69)

	forecast := services.ComputeForecast(item, snaps)

	assert.Equal(t, 10.67, forecast.AvgDailyConsumption)
}

func TestComputeForecast_HorizonBeyondReorderWindow(t *testing.T) {
	item := &domain.InventoryItem{
		ID:       uuid.New(),
		Name:     "Napkins",
		Quantity: 500,
	}
	snaps := snapshotSeries(item.ID, "2024-01-27", 530, 520, 510, 500)

	forecast := services.ComputeForecast(item, snaps)

	assert.Equal(t, 50, forecast.DaysUntilStockout)
	assert.False(t, forecast.ReorderSuggested)
}

func TestComputeForecast_SortsUnorderedSnapshots(t *testing.T) {
	item := &domain.InventoryItem{
		ID:       uuid.New(),
		Name:     "Sponges",
		Quantity: 70,
	}
	snaps := snapshotSeries(item.ID, "2024-01-27", 100, 90, 80, 70)
	unordered := []domain.StockSnapshot{snaps[2], snaps[0], snaps[3], snaps[1]}

	forecast := services.ComputeForecast(item, unordered)

	assert.Equal(t, 10.0, forecast.AvgDailyConsumption)
	assert.Equal(t, "2024-01-27", forecast.Data[0].Date)
	assert.Equal(t, "2024-01-30", forecast.Data[3].Date)
}

func TestComputeForecast_EchoesItemFields(t *testing.T) {
	item := &domain.InventoryItem{
		ID:          uuid.New(),
		Name:        "Floor Cleaner",
		Quantity:    33,
		MinQuantity: 8,
	}

	forecast := services.ComputeForecast(item, nil)

	assert.Equal(t, item.ID, forecast.ItemID)
	assert.Equal(t, "Floor Cleaner", forecast.ItemName)
	assert.Equal(t, 33, forecast.CurrentQuantity)
	assert.Equal(t, 8, forecast.MinQuantity)
}

func TestAggregateTrends(t *testing.T) {
	itemA := domain.InventoryItem{
		ID: uuid.New(), Name: "A", MinQuantity: 1, SellPrice: decPtr(2.0),
	}
	itemB := domain.InventoryItem{
		ID: uuid.New(), Name: "B", MinQuantity: 10, SellPrice: decPtr(10.0),
	}
	items := []domain.InventoryItem{itemA, itemB}

	t.Run("sums_quantity_and_value_per_date", func(t *testing.T) {
		snaps := []domain.StockSnapshot{
			{ItemID: itemA.ID, Quantity: 5, SnapshotDate: "2024-01-30"},
			{ItemID: itemB.ID, Quantity: 3, SnapshotDate: "2024-01-30"},
		}

		trends := services.AggregateTrends(snaps, items)

		require.Len(t, trends, 1)
		assert.Equal(t, "2024-01-30", trends[0].Date)
		assert.Equal(t, 8, trends[0].TotalQuantity)
		assert.Equal(t, 40.0, trends[0].TotalValue)
		// Only item B (3 <= 10) is at or below its minimum.
		assert.Equal(t, 1, trends[0].LowStockCount)
	})

	t.Run("orders_dates_ascending", func(t *testing.T) {
		snaps := []domain.StockSnapshot{
			{ItemID: itemA.ID, Quantity: 4, SnapshotDate: "2024-02-02"},
			{ItemID: itemA.ID, Quantity: 6, SnapshotDate: "2024-01-31"},
			{ItemID: itemA.ID, Quantity: 5, SnapshotDate: "2024-02-01"},
		}

		trends := services.AggregateTrends(snaps, items)

		require.Len(t, trends, 3)
		assert.Equal(t, "2024-01-31", trends[0].Date)
		assert.Equal(t, "2024-02-01", trends[1].Date)
		assert.Equal(t, "2024-02-02", trends[2].Date)
	})

	t.Run("missing_price_and_unknown_item_count_as_zero_value", func(t *testing.T) {
		noPriceItem := domain.InventoryItem{ID: uuid.New(), Name: "C", MinQuantity: 0}
		snaps := []domain.StockSnapshot{
			{ItemID: noPriceItem.ID, Quantity: 7, SnapshotDate: "2024-01-30"},
			{ItemID: uuid.New(), Quantity: 9, SnapshotDate: "2024-01-30"},
		}

		trends := services.AggregateTrends(snaps, []domain.InventoryItem{noPriceItem})

		require.Len(t, trends, 1)
		assert.Equal(t, 16, trends[0].TotalQuantity)
		assert.Equal(t, 0.0, trends[0].TotalValue)
		// The unknown item cannot be checked against a minimum.
		assert.Equal(t, 0, trends[0].LowStockCount)
	})

	t.Run("rounds_value_to_two_decimals", func(t *testing.T) {
		fractional := domain.InventoryItem{
			ID: uuid.New(), Name: "D", SellPrice: decPtr(3.333),
		}
		snaps := []domain.StockSnapshot{
			{ItemID: fractional.ID, Quantity: 2, SnapshotDate: "2024-01-30"},
		}

		trends := services.AggregateTrends(snaps, []domain.InventoryItem{fractional})

		require.Len(t, trends, 1)
		assert.Equal(t, 6.67, trends[0].TotalValue)
	})

	t.Run("empty_input_yields_empty_output", func(t *testing.T) {
		trends := services.AggregateTrends(nil, items)
		assert.Empty(t, trends)
	})
}

// Benchmarks
func BenchmarkComputeForecast(b *testing.B) {
	item := &domain.InventoryItem{ID: uuid.New(), Name: "Bench Item", Quantity: 300}
	snaps := snapshotSeries(item.ID, "2024-01-01", 600, 590, 575, 560, 552, 540,
		525, 515, 500, 488, 470, 462, 450, 440, 425, 415, 400, 390, 375, 365,
		350, 340, 330, 320, 312, 305, 300, 295, 292, 290)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = services.ComputeForecast(item, snaps)
	}
}
