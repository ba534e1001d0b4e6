package calculator

import "PriceOracle/internal/model"

// Indicator windows.
const (
	RSIPeriod      = 14
	MAShortPeriod  = 7
	MAMediumPeriod = 25
	MALongPeriod   = 50
)

// Compute derives every indicator from the closes. It never fails; short or empty
// input produces neutral values.
func Compute(closes []float64) model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		RSI:           CalculateRSI(closes, RSIPeriod),
		MAShort:       MovingAverage(closes, MAShortPeriod),
		MAMedium:      MovingAverage(closes, MAMediumPeriod),
		MALong:        MovingAverage(closes, MALongPeriod),
		Volatility:    CalculateVolatility(closes),
		TrendStrength: CalculateTrendStrength(closes),
	}
}
