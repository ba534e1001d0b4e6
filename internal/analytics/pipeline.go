// Package analytics is the entry point of the price analytics pipeline. Every function
// here is pure: no I/O, no shared state, safe to call from any number of goroutines.
package analytics

import (
	"PriceOracle/internal/calculator"
	"PriceOracle/internal/forecast"
	"PriceOracle/internal/model"
	"PriceOracle/internal/strategy"
)

// GetIndicators computes the indicator snapshot. An empty series yields neutral defaults.
func GetIndicators(s model.PriceSeries) (model.IndicatorSnapshot, error) {
	if err := ValidateSeries(s); err != nil {
		return model.IndicatorSnapshot{}, err
	}
	return calculator.Compute(s.Closes), nil
}

// GetForecast extrapolates the series `days` steps ahead.
func GetForecast(s model.PriceSeries, days int) (model.ForecastResult, error) {
	if err := validateForPrediction(s, days); err != nil {
		return model.ForecastResult{}, err
	}
	return forecast.Linear(s.Closes, days), nil
}

// GetSignal forecasts and classifies the series.
func GetSignal(s model.PriceSeries, days int) (model.SignalVerdict, error) {
	if err := validateForPrediction(s, days); err != nil {
		return model.SignalVerdict{}, err
	}
	return strategy.Classify(s.Closes, calculator.Compute(s.Closes), forecast.Linear(s.Closes, days)), nil
}

// GetAccuracy scores a forecast against the realized tail.
func GetAccuracy(fc model.ForecastResult, realized []float64) (model.AccuracyMetrics, error) {
	if err := ValidateRealized(realized); err != nil {
		return model.AccuracyMetrics{}, err
	}
	return forecast.Score(fc, realized), nil
}

// Predict runs the whole pipeline and assembles the report. Metrics compare the
// forecast with the tail of the input series, as a backtest-style annotation.
func Predict(s model.PriceSeries, days int) (*model.Prediction, error) {
	if err := validateForPrediction(s, days); err != nil {
		return nil, err
	}
	ind := calculator.Compute(s.Closes)
	fc := forecast.Linear(s.Closes, days)
	verdict := strategy.Classify(s.Closes, ind, fc)

	return &model.Prediction{
		Symbol:        s.Symbol,
		CurrentPrice:  s.Last(),
		ExpectedPrice: fc.Last(),
		Forecast:      fc,
		Indicators:    ind,
		Verdict:       verdict,
		Metrics:       forecast.Score(fc, s.Tail(days)),
		Days:          days,
		AsOf:          s.Timestamps[len(s.Timestamps)-1],
	}, nil
}

func validateForPrediction(s model.PriceSeries, days int) error {
	if err := ValidateDays(days); err != nil {
		return err
	}
	if err := ValidateSeries(s); err != nil {
		return err
	}
	if s.Len() == 0 {
		return ErrInsufficientData
	}
	return nil
}
