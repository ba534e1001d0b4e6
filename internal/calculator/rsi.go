package calculator

// NeutralRSI is returned whenever RSI cannot be computed meaningfully.
const NeutralRSI = 50.0

// CalculateRSI computes RSI from simple averages of the last `period` gains and losses.
// Returns NeutralRSI when fewer than `period` price changes exist, and also when the
// average loss is zero: upstream variants disagree between 50 and 100 there, and 50
// is the conservative choice used throughout this service.
func CalculateRSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes)-1 < period {
		return NeutralRSI
	}

	var avgGain, avgLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // make positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return NeutralRSI
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if !isFinite(rsi) {
		return NeutralRSI
	}
	return clamp(rsi, 0, 100)
}
