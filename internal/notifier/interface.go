package notifier

import (
	"context"
	"time"

	"github.com/newthinker/marketmind/internal/engine"
)

// Alert is the notification view of one watchlist signal.
type Alert struct {
	Ticker         string     `json:"ticker"`
	Mode           string     `json:"mode"`
	Bias           string     `json:"market_bias"`
	Price          float64    `json:"price"`
	EstimatedPrice float64    `json:"estimated_price"`
	Range          [2]float64 `json:"range"`
	Confidence     int        `json:"confidence"`
	Sentiment      int        `json:"sentiment_score"`
	SentimentLabel string     `json:"sentiment_label"`
	Summary        string     `json:"summary"`
	GeneratedAt    time.Time  `json:"generated_at"`
}

// FromResult builds an alert from a synthesis result. The summary prefers
// the LLM reasoning when present.
func FromResult(res *engine.SignalResult) Alert {
	summary := res.AIExplanation.Summary
	if res.AIAnalysis != nil && res.AIAnalysis.ReasoningSummary != "" {
		summary = res.AIAnalysis.ReasoningSummary
	}
	return Alert{
		Ticker:         res.Ticker,
		Mode:           string(res.Mode),
		Bias:           string(res.MarketBias),
		Price:          res.Price,
		EstimatedPrice: res.Prediction.EstimatedPrice,
		Range:          res.Prediction.Range,
		Confidence:     res.Prediction.Confidence,
		Sentiment:      res.Sentiment.Score,
		SentimentLabel: string(res.Sentiment.Label),
		Summary:        summary,
		GeneratedAt:    res.GeneratedAt,
	}
}

// Notifier delivers alerts to one channel.
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Send delivers a single alert
	Send(ctx context.Context, alert Alert) error

	// SendBatch delivers several alerts as one message
	SendBatch(ctx context.Context, alerts []Alert) error
}
