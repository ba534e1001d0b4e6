package analytics

import (
	"math"

	"PriceOracle/internal/model"
)

// MaxForecastDays bounds the horizon accepted by the pipeline.
const MaxForecastDays = 365

// ValidateSeries checks the series invariants: equal-length closes and timestamps,
// strictly positive finite prices, and strictly ascending timestamps.
// An empty series is valid here; callers decide whether it is sufficient.
func ValidateSeries(s model.PriceSeries) error {
	if len(s.Timestamps) != len(s.Closes) {
		return invalid("series", "%d prices but %d timestamps", len(s.Closes), len(s.Timestamps))
	}
	for i, p := range s.Closes {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return invalid("price", "non-finite value at index %d", i)
		}
		if p <= 0 {
			return invalid("price", "non-positive value %g at index %d", p, i)
		}
	}
	for i := 1; i < len(s.Timestamps); i++ {
		if !s.Timestamps[i].After(s.Timestamps[i-1]) {
			return invalid("timestamps", "not in ascending order at index %d", i)
		}
	}
	return nil
}

// ValidateDays checks the forecast horizon.
func ValidateDays(days int) error {
	if days <= 0 {
		return invalid("days", "must be positive, got %d", days)
	}
	if days > MaxForecastDays {
		return invalid("days", "must be at most %d, got %d", MaxForecastDays, days)
	}
	return nil
}

// ValidateRealized checks a realized price tail used for scoring. Every value must
// be a finite positive price.
func ValidateRealized(realized []float64) error {
	for i, p := range realized {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return invalid("realized", "non-finite value at index %d", i)
		}
		if p <= 0 {
			return invalid("realized", "non-positive value %g at index %d", p, i)
		}
	}
	return nil
}
