// internal/core/domain/snapshot.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotDateLayout is the calendar-date format snapshots are keyed by.
const SnapshotDateLayout = "2006-01-02"

// StockSnapshot records an item's quantity on a given calendar date.
// SnapshotDate is kept as a plain YYYY-MM-DD string so grouping and
// ordering stay exact regardless of timezone.
type StockSnapshot struct {
	ID           uuid.UUID `json:"id"`
	ItemID       uuid.UUID `json:"item_id"`
	Quantity     int       `json:"quantity"`
	SnapshotDate string    `json:"snapshot_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// ForecastPoint is one dated quantity in a forecast series. Predicted
// is set only on projected points.
type ForecastPoint struct {
	Date      string `json:"date"`
	Quantity  int    `json:"quantity"`
	Predicted *int   `json:"predicted,omitempty"`
}

// Forecast is the demand forecast for a single item.
type Forecast struct {
	ItemID              uuid.UUID       `json:"item_id"`
	ItemName            string          `json:"item_name"`
	CurrentQuantity     int             `json:"current_quantity"`
	MinQuantity         int             `json:"min_quantity"`
	AvgDailyConsumption float64         `json:"avg_daily_consumption"`
	DaysUntilStockout   int             `json:"days_until_stockout"`
	ReorderSuggested    bool            `json:"reorder_suggested"`
	Data                []ForecastPoint `json:"data"`
}

// TrendPoint aggregates all snapshots taken on one date.
type TrendPoint struct {
	Date          string  `json:"date"`
	TotalQuantity int     `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
	LowStockCount int     `json:"low_stock_count"`
}

// DashboardStats summarizes the current state of the inventory.
type DashboardStats struct {
	TotalItems      int                `json:"total_items"`
	LowStockItems   int                `json:"low_stock_items"`
	TotalCategories int                `json:"total_categories"`
	TotalValue      float64            `json:"total_value"`
	RecentActivity  []AuditLog         `json:"recent_activity"`
	StatusBreakdown map[ItemStatus]int `json:"status_breakdown"`
}
