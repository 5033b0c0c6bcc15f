package indicator

import "math"

// zeroLossDivisor replaces a zero average loss so RSI saturates near 100
// instead of dividing by zero.
const zeroLossDivisor = 0.001

// RSI calculates the relative strength index from rolling means of gains
// and losses over the prior period price changes.
func RSI(closes []float64, period int) []float64 {
	delta := Diff(closes, 1)

	gains := make([]float64, len(delta))
	losses := make([]float64, len(delta))
	for i, d := range delta {
		if math.IsNaN(d) {
			gains[i], losses[i] = d, d
			continue
		}
		gains[i] = math.Max(d, 0)
		losses[i] = math.Max(-d, 0)
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	out := nanSeries(len(closes))
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			l = zeroLossDivisor
		}
		out[i] = 100 - 100/(1+g/l)
	}
	return out
}
