package engine

import (
	"time"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/indicator"
	"github.com/newthinker/marketmind/internal/predict"
	"github.com/newthinker/marketmind/internal/sentiment"
)

// SignalResult is the complete output of one synthesis.
type SignalResult struct {
	Ticker        string             `json:"ticker"`
	Timeframe     core.Timeframe     `json:"timeframe"`
	Mode          core.SeriesMode    `json:"mode"`
	Price         float64            `json:"price"`
	ChangePercent float64            `json:"change_percent"`
	Volume        int64              `json:"volume"`
	MarketBias    indicator.Bias     `json:"market_bias"`
	Technical     TechnicalAnalysis  `json:"technical_analysis"`
	Prediction    predict.Prediction `json:"prediction"`
	Sentiment     SentimentSummary   `json:"sentiment"`
	Charts        []ChartPoint       `json:"charts"`
	AIAnalysis    *core.Insight      `json:"ai_analysis,omitempty"`
	AIExplanation Explanation        `json:"ai_explanation"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// TechnicalAnalysis is the latest indicator snapshot, rounded for display.
type TechnicalAnalysis struct {
	SMA20      indicator.Reading `json:"sma_20"`
	SMA50      indicator.Reading `json:"sma_50"`
	RSI        indicator.Reading `json:"rsi"`
	MACD       indicator.Reading `json:"macd"`
	MACDSignal indicator.Reading `json:"macd_signal"`
	MACDHist   indicator.Reading `json:"macd_hist"`
	BBUpper    indicator.Reading `json:"bb_upper"`
	BBMiddle   indicator.Reading `json:"bb_mid"`
	BBLower    indicator.Reading `json:"bb_lower"`
	Volatility indicator.Reading `json:"volatility"`
	Momentum   indicator.Reading `json:"momentum"`
	Support    float64           `json:"support"`
	Resistance float64           `json:"resistance"`
	Summary    string            `json:"summary"`
}

// SentimentSummary is the sentiment score with the factors and headlines
// behind it.
type SentimentSummary struct {
	Score      int             `json:"score"`
	Label      sentiment.Label `json:"label"`
	Summary    string          `json:"summary"`
	Overridden bool            `json:"overridden"`
	Components Factors         `json:"components"`
	News       []core.Headline `json:"news"`
}

// Factors break the signal down into its contributing terms.
type Factors struct {
	PriceMomentum       float64 `json:"price_momentum"`
	TechnicalIndicators float64 `json:"technical_indicators"`
	VolumeActivity      float64 `json:"volume_activity"`
	VolatilityAdj       float64 `json:"volatility_adj"`
}

// ChartPoint is one bar of the chart window with the slow average overlay.
type ChartPoint struct {
	Date   string            `json:"date"`
	Open   float64           `json:"open"`
	High   float64           `json:"high"`
	Low    float64           `json:"low"`
	Close  float64           `json:"close"`
	Volume int64             `json:"volume"`
	SMA50  indicator.Reading `json:"sma_50"`
}

// Explanation is a plain-language account of the prediction.
type Explanation struct {
	Summary string   `json:"summary"`
	Drivers []string `json:"drivers"`
}
