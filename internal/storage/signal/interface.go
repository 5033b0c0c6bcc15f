// internal/storage/signal/interface.go
package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/marketmind/internal/engine"
)

// Store defines the interface for score history persistence.
type Store interface {
	// Save persists a record, assigning an ID and timestamp when unset.
	Save(ctx context.Context, rec *Record) error

	// GetByID retrieves a record by its ID.
	GetByID(ctx context.Context, id string) (*Record, error)

	// List retrieves records matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Record, error)

	// Close releases the underlying resources.
	Close() error
}

// ListFilter defines criteria for listing records.
type ListFilter struct {
	Ticker string
	From   time.Time
	To     time.Time
	Limit  int
}

// Record is one persisted synthesis: the sentiment score with the factor
// breakdown and explanation behind it.
type Record struct {
	ID          string          `json:"id" db:"id"`
	Ticker      string          `json:"ticker" db:"ticker"`
	Score       float64         `json:"score" db:"score"`
	Bias        string          `json:"market_bias" db:"bias"`
	Mode        string          `json:"mode" db:"mode"`
	Features    json.RawMessage `json:"features" db:"features"`
	Explanation json.RawMessage `json:"explanation" db:"explanation"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewRecord builds a history record from a synthesis result.
func NewRecord(res *engine.SignalResult) (*Record, error) {
	features, err := json.Marshal(res.Sentiment.Components)
	if err != nil {
		return nil, fmt.Errorf("encoding features: %w", err)
	}
	explanation, err := json.Marshal(res.AIExplanation)
	if err != nil {
		return nil, fmt.Errorf("encoding explanation: %w", err)
	}
	return &Record{
		Ticker:      res.Ticker,
		Score:       float64(res.Sentiment.Score),
		Bias:        string(res.MarketBias),
		Mode:        string(res.Mode),
		Features:    features,
		Explanation: explanation,
		CreatedAt:   res.GeneratedAt,
	}, nil
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
