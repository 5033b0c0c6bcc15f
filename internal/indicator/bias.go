package indicator

// Bias is the qualitative market direction of a snapshot.
type Bias string

const (
	BiasPositive Bias = "Positive"
	BiasNegative Bias = "Negative"
	BiasNeutral  Bias = "Neutral"
)

// RSI band inside which the market is always classified Neutral.
const (
	NeutralRSILow  = 45.0
	NeutralRSIHigh = 55.0
)

// ClassifyBias compares price and the fast average against the slow
// average. An RSI inside the neutral band overrides the trend. Without both
// averages there is no trend to classify and the result is Neutral.
func ClassifyBias(s Snapshot) Bias {
	if s.RSI.Defined && s.RSI.Value >= NeutralRSILow && s.RSI.Value <= NeutralRSIHigh {
		return BiasNeutral
	}
	if !s.SMA20.Defined || !s.SMA50.Defined {
		return BiasNeutral
	}

	sma20, sma50 := s.SMA20.Value, s.SMA50.Value
	switch {
	case s.Price > sma50 && sma20 > sma50:
		return BiasPositive
	case s.Price < sma50 && sma20 < sma50:
		return BiasNegative
	default:
		return BiasNeutral
	}
}
