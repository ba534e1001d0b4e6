// Package forecast extrapolates price paths and scores them against realized prices.
package forecast

import (
	"math"

	"PriceOracle/internal/model"
)

// FloorRatio bounds every predicted value from below as a fraction of the last price.
const FloorRatio = 0.5

// Linear fits an ordinary least-squares line over (index, close) and extrapolates it
// `days` steps past the end of the series. Every predicted value is floored at
// FloorRatio*last. Fewer than two points or a degenerate fit yields a flat forecast
// at the last price. An empty series or non-positive days yields an empty result.
func Linear(closes []float64, days int) model.ForecastResult {
	if days <= 0 || len(closes) == 0 {
		return model.ForecastResult{Prices: []float64{}}
	}
	last := closes[len(closes)-1]

	slope, intercept, ok := fitLine(closes)
	if !ok {
		return Flat(last, days)
	}

	n := len(closes)
	floor := last * FloorRatio
	prices := make([]float64, days)
	for i := range prices {
		p := slope*float64(n+i) + intercept
		if !isFinite(p) {
			return Flat(last, days)
		}
		prices[i] = math.Max(p, floor)
	}
	return model.ForecastResult{Prices: prices}
}

// Flat repeats price `days` times.
func Flat(price float64, days int) model.ForecastResult {
	if days < 0 {
		days = 0
	}
	prices := make([]float64, days)
	for i := range prices {
		prices[i] = price
	}
	return model.ForecastResult{Prices: prices}
}

// fitLine returns slope and intercept of y = slope*x + intercept over x = 0..n-1.
func fitLine(ys []float64) (slope, intercept float64, ok bool) {
	n := len(ys)
	if n < 2 {
		return 0, 0, false
	}
	// offsets from the first price keep a constant series exactly flat
	base := ys[0]
	meanX := float64(n-1) / 2
	meanD := 0.0
	for _, y := range ys {
		meanD += y - base
	}
	meanD /= float64(n)

	var sxx, sxy float64
	for i, y := range ys {
		dx := float64(i) - meanX
		sxx += dx * dx
		sxy += dx * (y - base - meanD)
	}
	if sxx == 0 {
		return 0, 0, false
	}
	slope = sxy / sxx
	intercept = base + meanD - slope*meanX
	if !isFinite(slope) || !isFinite(intercept) {
		return 0, 0, false
	}
	return slope, intercept, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
