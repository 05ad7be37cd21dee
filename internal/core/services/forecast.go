// internal/core/services/forecast.go
package services

import (
	"math"
	"sort"
	"time"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// Forecast tuning constants. The consumption estimate blends a
// short-window moving average of day-over-day stock drops with the
// magnitude of a least-squares trend slope; both knobs below bound the
// moving-average window and the projection horizon.
const (
	movingAvgWindow   = 7
	projectionDays    = 14
	reorderWindowDays = 14

	// StockoutIndeterminate marks a horizon that cannot be computed
	// from the available history.
	StockoutIndeterminate = -1
)

// ComputeForecast estimates an item's daily consumption from its stock
// snapshot history and projects quantity forward projectionDays days.
// Snapshots may arrive in any order; they are sorted ascending by date
// string before use. The computation is pure and never fails: with
// fewer than two snapshots it returns a zero rate, an indeterminate
// horizon and the historical points only.
func ComputeForecast(item *domain.InventoryItem, snapshots []domain.StockSnapshot) *domain.Forecast {
	ordered := make([]domain.StockSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SnapshotDate < ordered[j].SnapshotDate
	})

	forecast := &domain.Forecast{
		ItemID:            item.ID,
		ItemName:          item.Name,
		CurrentQuantity:   item.Quantity,
		MinQuantity:       item.MinQuantity,
		DaysUntilStockout: StockoutIndeterminate,
		Data:              historicalPoints(ordered),
	}

	if len(ordered) < 2 {
		return forecast
	}

	rate := blendedConsumptionRate(ordered)

	// A non-positive blend means flat stock or net restocking; no
	// stockout is predicted then, but the projection is still drawn
	// (flat ahead, or rising for a negative rate).
	if rate > 0 {
		forecast.DaysUntilStockout = int(math.Floor(float64(item.Quantity) / rate))
		forecast.ReorderSuggested = forecast.DaysUntilStockout <= reorderWindowDays
	}

	last := ordered[len(ordered)-1]
	forecast.Data = append(forecast.Data, projectSeries(last.SnapshotDate, last.Quantity, rate)...)

	// The reported consumption rate is non-negative even when the
	// projection rises.
	forecast.AvgDailyConsumption = roundTo2(math.Max(rate, 0))
	return forecast
}

// blendedConsumptionRate averages two estimators: the mean of the last
// min(movingAvgWindow, n-1) day-over-day decreases, and the magnitude
// of a negative OLS slope of quantity over the sample index (a
// non-negative slope contributes zero). Requires len(snapshots) >= 2.
func blendedConsumptionRate(snapshots []domain.StockSnapshot) float64 {
	deltas := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		deltas = append(deltas, float64(snapshots[i-1].Quantity-snapshots[i].Quantity))
	}

	window := movingAvgWindow
	if len(deltas) < window {
		window = len(deltas)
	}
	var sum float64
	for _, d := range deltas[len(deltas)-window:] {
		sum += d
	}
	movingAvg := sum / float64(window)

	regression := 0.0
	if slope := regressionSlope(snapshots); slope < 0 {
		regression = -slope
	}

	return (movingAvg + regression) / 2
}

// regressionSlope fits quantity against the sample index 0..n-1 by
// ordinary least squares. With consecutive integer indices the
// denominator cannot be zero for n >= 2.
func regressionSlope(snapshots []domain.StockSnapshot) float64 {
	n := float64(len(snapshots))
	var sumX, sumY, sumXY, sumXX float64
	for i, s := range snapshots {
		x := float64(i)
		y := float64(s.Quantity)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	return (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
}

func historicalPoints(snapshots []domain.StockSnapshot) []domain.ForecastPoint {
	points := make([]domain.ForecastPoint, 0, len(snapshots)+projectionDays)
	for _, s := range snapshots {
		points = append(points, domain.ForecastPoint{
			Date:     s.SnapshotDate,
			Quantity: s.Quantity,
		})
	}
	return points
}

// projectSeries draws projectionDays future points starting the day
// after lastDate, draining rate units per day from the last observed
// quantity and clamping at zero. A negative rate projects upward.
// Each point carries its rounded value in both Quantity and Predicted.
func projectSeries(lastDate string, lastQuantity int, rate float64) []domain.ForecastPoint {
	start, err := time.Parse(domain.SnapshotDateLayout, lastDate)
	if err != nil {
		return nil
	}

	points := make([]domain.ForecastPoint, 0, projectionDays)
	for day := 1; day <= projectionDays; day++ {
		projected := math.Max(0, float64(lastQuantity)-rate*float64(day))
		value := int(math.Round(projected))
		predicted := value
		points = append(points, domain.ForecastPoint{
			Date:      start.AddDate(0, 0, day).Format(domain.SnapshotDateLayout),
			Quantity:  value,
			Predicted: &predicted,
		})
	}
	return points
}

// AggregateTrends folds every snapshot into one TrendPoint per
// snapshot date: summed quantity, summed quantity*sell_price (missing
// prices and unknown items count as zero) and the number of snapshots
// at or below their item's minimum quantity. Output is ordered by
// ascending date string.
func AggregateTrends(snapshots []domain.StockSnapshot, items []domain.InventoryItem) []domain.TrendPoint {
	type itemInfo struct {
		sellPrice   float64
		minQuantity int
	}
	lookup := make(map[string]itemInfo, len(items))
	for _, it := range items {
		info := itemInfo{minQuantity: it.MinQuantity}
		if it.SellPrice != nil {
			info.sellPrice = it.SellPrice.InexactFloat64()
		}
		lookup[it.ID.String()] = info
	}

	grouped := make(map[string]*domain.TrendPoint)
	for _, s := range snapshots {
		point, ok := grouped[s.SnapshotDate]
		if !ok {
			point = &domain.TrendPoint{Date: s.SnapshotDate}
			grouped[s.SnapshotDate] = point
		}
		point.TotalQuantity += s.Quantity

		info, known := lookup[s.ItemID.String()]
		if known {
			point.TotalValue += float64(s.Quantity) * info.sellPrice
			if s.Quantity <= info.minQuantity {
				point.LowStockCount++
			}
		}
	}

	trends := make([]domain.TrendPoint, 0, len(grouped))
	for _, point := range grouped {
		point.TotalValue = roundTo2(point.TotalValue)
		trends = append(trends, *point)
	}

	// Dates are zero-padded ISO strings, so plain string ordering is
	// chronological.
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Date < trends[j].Date
	})
	return trends
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
