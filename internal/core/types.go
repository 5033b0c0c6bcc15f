package core

import (
	"strings"
	"time"
)

// Bar represents one OHLCV observation for a fixed time period
type Bar struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// IsValid checks that the bar is internally consistent
func (b Bar) IsValid() bool {
	if b.Time.IsZero() || b.Close <= 0 {
		return false
	}
	return b.Low <= b.Open && b.Low <= b.Close && b.High >= b.Open && b.High >= b.Close
}

// SeriesMode tags where a bar sequence came from
type SeriesMode string

const (
	ModeLive SeriesMode = "LIVE"
	ModeDemo SeriesMode = "DEMO"
)

// Timeframe selects the lookback window and sampling interval of a request
type Timeframe string

const (
	TimeframeShort  Timeframe = "short"
	TimeframeMedium Timeframe = "medium"
	TimeframeLong   Timeframe = "long"
)

// ParseTimeframe resolves user input to a Timeframe. The 1W/1M/1Y range
// aliases used by the web frontend are accepted; anything unrecognized
// resolves to medium.
func ParseTimeframe(s string) Timeframe {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "1w":
		return TimeframeShort
	case "long", "1y":
		return TimeframeLong
	default:
		return TimeframeMedium
	}
}

// Headline represents a single news headline from any source
type Headline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Published   string    `json:"published"` // relative label, e.g. "3h ago"
	PublishedAt time.Time `json:"published_timestamp"`
}

// Insight is a qualitative narrative of a signal, produced by an LLM or by
// a canned fallback when no model is available.
type Insight struct {
	PrimaryFactor    string `json:"primary_factor"`
	ReasoningSummary string `json:"reasoning_summary"`
	Outlook          string `json:"outlook"`
	ConfidenceScore  int    `json:"confidence_score"`
}
