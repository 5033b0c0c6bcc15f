// Package predict fuses the latest indicator readings with a sentiment
// score into a next-horizon price estimate.
package predict

import (
	"math"

	"github.com/newthinker/marketmind/internal/indicator"
)

// Fusion constants.
const (
	VolatilityFloor   = 0.015
	HighVolatility    = 0.03
	SentimentWeight   = 0.5
	MomentumWeight    = 0.5
	MomentumScale     = 0.5
	BaseConfidence    = 70
	AgreementBonus    = 10
	VolatilityPenalty = 15
	MinConfidence     = 40
	MaxConfidence     = 95
)

// Input is everything the fuser reads.
type Input struct {
	Price      float64
	Volatility indicator.Reading
	Momentum   indicator.Reading
	Sentiment  int
}

// InputFrom builds an Input from a snapshot and a sentiment score.
func InputFrom(s indicator.Snapshot, sentiment int) Input {
	return Input{
		Price:      s.Price,
		Volatility: s.Volatility,
		Momentum:   s.Momentum,
		Sentiment:  sentiment,
	}
}

// Prediction is the fused estimate.
type Prediction struct {
	EstimatedPrice   float64    `json:"estimated_price"`
	Range            [2]float64 `json:"range"`
	Confidence       int        `json:"prediction_confidence"`
	VolatilityFactor float64    `json:"volatility_factor"`
}

// Fuse computes the estimate. Volatility below the floor, or undefined, is
// raised to the floor; undefined momentum counts as zero.
func Fuse(in Input) Prediction {
	vol := math.Max(in.Volatility.Or(0), VolatilityFloor)
	momentum := in.Momentum.Or(0)

	sigma := in.Price * vol

	sentimentWeight := float64(in.Sentiment) / 100 * SentimentWeight
	momentumWeight := -MomentumWeight
	if momentum > 0 {
		momentumWeight = MomentumWeight
	}
	bias := sentimentWeight + momentumWeight*MomentumScale

	estimate := in.Price + sigma*bias

	confidence := BaseConfidence
	if (momentum > 0 && in.Sentiment > 0) || (momentum < 0 && in.Sentiment < 0) {
		confidence += AgreementBonus
	}
	if vol > HighVolatility {
		confidence -= VolatilityPenalty
	}
	confidence = min(max(confidence, MinConfidence), MaxConfidence)

	return Prediction{
		EstimatedPrice:   round(estimate, 2),
		Range:            [2]float64{round(estimate-sigma, 2), round(estimate+sigma, 2)},
		Confidence:       confidence,
		VolatilityFactor: round(vol, 4),
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
