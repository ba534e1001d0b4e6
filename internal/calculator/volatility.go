package calculator

import "math"

// CalculateVolatility returns the population standard deviation of period-over-period
// returns, in percent. Zero with fewer than two points.
func CalculateVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) == 0 {
		return 0
	}
	m := mean(returns)
	variance := 0.0
	for _, r := range returns {
		variance += (r - m) * (r - m)
	}
	variance /= float64(len(returns))
	vol := math.Sqrt(variance) * 100
	if !isFinite(vol) {
		return 0
	}
	return vol
}

// CalculateTrendStrength is the percentage change from the first to the last close.
func CalculateTrendStrength(closes []float64) float64 {
	if len(closes) == 0 || closes[0] == 0 {
		return 0
	}
	first, last := closes[0], closes[len(closes)-1]
	trend := (last - first) / first * 100
	if !isFinite(trend) {
		return 0
	}
	return trend
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
