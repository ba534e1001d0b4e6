package strategy

import (
	"math"

	"PriceOracle/internal/calculator"
	"PriceOracle/internal/model"
)

// signalRule is one row of the signal table; rules are evaluated in order.
type signalRule struct {
	Match  func(trend, rsi float64) bool
	Signal model.Signal
	Label  string
}

// Rules defines the signal table in strict priority order. The STRONG_SELL row is
// shadowed by SELL and kept so the table reads like the published rule set.
var Rules = []signalRule{
	{func(tr, rsi float64) bool { return tr > 10 && rsi < 70 }, model.SignalStrongBuy, "Strong Buy"},
	{func(tr, rsi float64) bool { return tr > 3 && rsi < 70 }, model.SignalBuy, "Buy"},
	{func(tr, rsi float64) bool { return tr >= -3 && tr <= 3 && rsi > 30 && rsi < 70 }, model.SignalHold, "Hold"},
	{func(tr, rsi float64) bool { return tr < -3 && rsi > 30 }, model.SignalSell, "Sell"},
	{func(tr, rsi float64) bool { return tr < -10 && rsi > 30 }, model.SignalStrongSell, "Strong Sell"},
}

// DefaultSignal applies when no rule matches, e.g. RSI extremes contradicting the trend.
var DefaultSignal = signalRule{Signal: model.SignalHold, Label: "Hold"}

// mapSignal maps predicted trend (percent) and RSI to a signal and its label.
func mapSignal(trend, rsi float64) (model.Signal, string) {
	for _, r := range Rules {
		if r.Match(trend, rsi) {
			return r.Signal, r.Label
		}
	}
	return DefaultSignal.Signal, DefaultSignal.Label
}

// PredictedTrend is the percentage move from the current price to the last forecast value.
func PredictedTrend(current float64, fc model.ForecastResult) float64 {
	if current <= 0 || fc.Days() == 0 {
		return 0
	}
	trend := (fc.Last() - current) / current * 100
	if math.IsNaN(trend) || math.IsInf(trend, 0) {
		return 0
	}
	return trend
}

// Classify computes the full verdict from the closes, their indicators and the forecast.
// The caller guarantees a non-empty series with a positive last price.
func Classify(closes []float64, ind model.IndicatorSnapshot, fc model.ForecastResult) model.SignalVerdict {
	current := 0.0
	if len(closes) > 0 {
		current = closes[len(closes)-1]
	}

	support, resistance := calculator.CalculateSupportResistance(closes)
	trend := PredictedTrend(current, fc)
	signal, label := mapSignal(trend, ind.RSI)

	expected := current
	if fc.Days() > 0 {
		expected = fc.Last()
	}

	return model.SignalVerdict{
		Signal:         signal,
		SignalText:     label,
		Action:         decideAction(current, expected, support, resistance),
		Confidence:     scoreConfidence(trend, ind.Volatility, ind.RSI),
		Support:        support,
		Resistance:     resistance,
		PredictedTrend: trend,
	}
}
