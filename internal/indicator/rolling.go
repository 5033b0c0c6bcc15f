package indicator

import "math"

// The functions in this file return series aligned with their input: index i
// of the output corresponds to index i of the input, and positions without
// enough history hold NaN.

// SMA calculates the trailing simple moving average over period values.
// Any NaN inside a window makes that window undefined.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	var sum float64
	valid := 0
	for i, v := range values {
		if !math.IsNaN(v) {
			sum += v
			valid++
		}
		if i >= period {
			if old := values[i-period]; !math.IsNaN(old) {
				sum -= old
				valid--
			}
		}
		if i >= period-1 && valid == period {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// StdDev calculates the trailing sample standard deviation (n-1 divisor).
func StdDev(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 2 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		var sum float64
		defined := true
		for _, v := range window {
			if math.IsNaN(v) {
				defined = false
				break
			}
			sum += v
		}
		if !defined {
			continue
		}
		mean := sum / float64(period)
		var sq float64
		for _, v := range window {
			sq += (v - mean) * (v - mean)
		}
		out[i] = math.Sqrt(sq / float64(period-1))
	}
	return out
}

// EMA calculates the recursive exponential moving average with smoothing
// 2/(span+1), seeded with the first defined value.
func EMA(values []float64, span int) []float64 {
	out := nanSeries(len(values))
	if span <= 0 {
		return out
	}

	alpha := 2.0 / float64(span+1)
	ema := math.NaN()
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			// carry the previous value forward
		case math.IsNaN(ema):
			ema = v
		default:
			ema = alpha*v + (1-alpha)*ema
		}
		out[i] = ema
	}
	return out
}

// Diff returns values[i] - values[i-lag].
func Diff(values []float64, lag int) []float64 {
	out := nanSeries(len(values))
	for i := lag; i < len(values); i++ {
		out[i] = values[i] - values[i-lag]
	}
	return out
}

// PctChange returns the period-over-period fractional change.
func PctChange(values []float64) []float64 {
	out := nanSeries(len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i] = values[i]/values[i-1] - 1
		}
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
