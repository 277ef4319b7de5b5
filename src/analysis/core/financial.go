package core

import (
	"math"

	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------

// Summarize reduces a price history (oldest first) to open/high/low/close,
// mean, deviation and percent change from first to last point.
func Summarize(points []models.PricePoint) models.MHistoryStats {
	if len(points) == 0 {
		return models.MHistoryStats{}
	}

	prices := make([]float64, len(points))
	high := -math.MaxFloat64
	low := math.MaxFloat64
	for i, p := range points {
		prices[i] = p.Price
		high = math.Max(high, p.Price)
		low = math.Min(low, p.Price)
	}
	mean, std := MeanStd(prices)

	open := prices[0]
	closePrice := prices[len(prices)-1]
	return models.MHistoryStats{
		Points:    len(points),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Mean:      mean,
		StdDev:    std,
		ChangePct: ChangePercent(closePrice, open),
	}
}

// -----------------------------------------------------------------------------

// ChangePercent returns the change from previous to current in percent.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}
