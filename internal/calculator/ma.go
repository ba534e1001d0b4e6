package calculator

import "errors"

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the SMA over `period`, degrading to the mean of everything
// available when the series is shorter, and to the last price below two points.
func MovingAverage(prices []float64, period int) float64 {
	switch {
	case len(prices) == 0:
		return 0
	case len(prices) < 2:
		return prices[len(prices)-1]
	}
	if ma, err := CalculateSMA(prices, period); err == nil {
		return ma
	}
	return mean(prices)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
