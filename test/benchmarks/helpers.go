// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// generateItems builds count items with stable IDs and prices.
func generateItems(count int) []domain.InventoryItem {
	rng := rand.New(rand.NewSource(1))
	items := make([]domain.InventoryItem, count)

	for i := range items {
		sell := decimal.NewFromFloat(float64(5 + rng.Intn(95)))
		items[i] = domain.InventoryItem{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("Bench Item %d", i),
			SKU:         fmt.Sprintf("BENCH-%05d", i),
			Quantity:    50 + rng.Intn(500),
			MinQuantity: 20,
			Unit:        "units",
			Status:      domain.StatusInStock,
			SellPrice:   &sell,
		}
	}
	return items
}

// generateHistory builds a declining daily snapshot series per item,
// days long, ending today. Quantities walk down at a noisy per-item
// rate the way real consumption data does.
func generateHistory(items []domain.InventoryItem, days int) []domain.StockSnapshot {
	rng := rand.New(rand.NewSource(2))
	today := time.Now().UTC()
	snapshots := make([]domain.StockSnapshot, 0, len(items)*days)

	for _, item := range items {
		rate := 1 + rng.Float64()*9
		qty := float64(item.Quantity)

		for d := 0; d < days; d++ {
			date := today.AddDate(0, 0, -d).Format(domain.SnapshotDateLayout)
			snapshots = append(snapshots, domain.StockSnapshot{
				ID:           uuid.New(),
				ItemID:       item.ID,
				Quantity:     int(qty),
				SnapshotDate: date,
			})
			qty += rate * (0.7 + rng.Float64()*0.6)
		}
	}
	return snapshots
}

// itemHistory filters the generated snapshots down to one item.
func itemHistory(snapshots []domain.StockSnapshot, itemID uuid.UUID) []domain.StockSnapshot {
	out := make([]domain.StockSnapshot, 0, 64)
	for _, s := range snapshots {
		if s.ItemID == itemID {
			out = append(out, s)
		}
	}
	return out
}
