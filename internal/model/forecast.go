package model

import "time"

// ForecastResult holds the predicted price path, one value per day.
type ForecastResult struct {
	Prices []float64 `json:"predictions"`
}

// Days returns the forecast horizon.
func (f ForecastResult) Days() int { return len(f.Prices) }

// Last returns the final predicted price, or 0 for an empty forecast.
func (f ForecastResult) Last() float64 {
	if len(f.Prices) == 0 {
		return 0
	}
	return f.Prices[len(f.Prices)-1]
}

// AccuracyMetrics annotates forecast quality against realized prices.
type AccuracyMetrics struct {
	Accuracy float64 `json:"accuracy"`
	RMSE     float64 `json:"rmse"`
}

// Prediction is the full report served for one symbol and horizon.
type Prediction struct {
	Symbol        string            `json:"symbol"`
	CurrentPrice  float64           `json:"current_price"`
	ExpectedPrice float64           `json:"expected_price"`
	Forecast      ForecastResult    `json:"forecast"`
	Indicators    IndicatorSnapshot `json:"indicators"`
	Verdict       SignalVerdict     `json:"verdict"`
	Metrics       AccuracyMetrics   `json:"metrics"`
	Days          int               `json:"days"`
	AsOf          time.Time         `json:"as_of"`
}
