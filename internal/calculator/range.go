package calculator

import "math"

// SupportResistanceWindow is the number of recent closes scanned for support and resistance.
const SupportResistanceWindow = 20

// CalculateSupportResistance returns the min and max of the most recent closes.
// A single point yields a ±5% band around it; an empty series yields zeros.
func CalculateSupportResistance(closes []float64) (support, resistance float64) {
	n := len(closes)
	switch n {
	case 0:
		return 0, 0
	case 1:
		return closes[0] * 0.95, closes[0] * 1.05
	}
	start := n - SupportResistanceWindow
	if start < 0 {
		start = 0
	}
	support = math.Inf(1)
	resistance = math.Inf(-1)
	for i := start; i < n; i++ {
		if closes[i] < support {
			support = closes[i]
		}
		if closes[i] > resistance {
			resistance = closes[i]
		}
	}
	return support, resistance
}
