package strategy

import (
	"math"

	"PriceOracle/internal/model"
)

// Confidence bounds.
const (
	MinConfidence = 15.0
	MaxConfidence = 95.0
)

// scoreConfidence scales the predicted move by 1.5, damps it for volatility and RSI
// extremity, then clamps to [MinConfidence, MaxConfidence].
func scoreConfidence(trend, volatility, rsi float64) float64 {
	confidence := math.Min(100, math.Abs(trend)*1.5)

	volatilityFactor := 1 - math.Min(0.4, volatility/50)
	confidence *= volatilityFactor

	switch {
	case rsi > 70 || rsi < 30:
		confidence *= 0.7
	case rsi > 60 || rsi < 40:
		confidence *= 0.85
	}

	if math.IsNaN(confidence) {
		return MinConfidence
	}
	return math.Max(MinConfidence, math.Min(MaxConfidence, confidence))
}

// decideAction compares the expected price with the support/resistance band first,
// then with a ±5% band around the current price.
func decideAction(current, expected, support, resistance float64) model.Action {
	switch {
	case expected > resistance:
		return model.ActionBuy
	case expected < support:
		return model.ActionSell
	case expected > current*1.05:
		return model.ActionBuy
	case expected < current*0.95:
		return model.ActionSell
	default:
		return model.ActionHold
	}
}
