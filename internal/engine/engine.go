// Package engine assembles price history, indicators, news sentiment and
// the fused prediction into one signal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/fallback"
	"github.com/newthinker/marketmind/internal/indicator"
	"github.com/newthinker/marketmind/internal/news"
	"github.com/newthinker/marketmind/internal/predict"
	"github.com/newthinker/marketmind/internal/sentiment"
	"github.com/newthinker/marketmind/internal/series"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ChartBars is the number of trailing bars included in the chart window.
const ChartBars = 100

// Enrichment outcomes reported to a Recorder.
const (
	EnrichmentOK       = "ok"
	EnrichmentFailed   = "failed"
	EnrichmentDisabled = "disabled"
)

// PriceProvider supplies a bar series, degrading to demo data on its own.
type PriceProvider interface {
	Fetch(ctx context.Context, ticker string, tf core.Timeframe) (series.Series, error)
}

// Narrator produces a qualitative reading of a signal.
type Narrator interface {
	Summarize(ctx context.Context, ticker string, snap indicator.Snapshot, headlines []core.Headline) (core.Insight, error)
}

// Recorder receives synthesis outcomes.
type Recorder interface {
	RecordSynthesis(mode string, d time.Duration)
	RecordEnrichment(status string)
	RecordSentiment(score int)
}

// Engine produces signals. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	prices    PriceProvider
	news      news.Fetcher
	scorer    *sentiment.Scorer
	newsLimit int

	narrator      Narrator
	enrichTimeout time.Duration

	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// New creates an engine. newsFetcher may be nil, in which case no headlines
// are fetched and sentiment is neutral unless overridden.
func New(prices PriceProvider, newsFetcher news.Fetcher, scorer *sentiment.Scorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		prices:        prices,
		news:          newsFetcher,
		scorer:        scorer,
		newsLimit:     news.DefaultLimit,
		enrichTimeout: 5 * time.Second,
		logger:        logger.Named("engine"),
		now:           time.Now,
	}
}

// SetNarrator enables LLM enrichment bounded by timeout.
func (e *Engine) SetNarrator(n Narrator, timeout time.Duration) {
	e.narrator = n
	if timeout > 0 {
		e.enrichTimeout = timeout
	}
}

// SetRecorder attaches a metrics recorder.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// SetNewsLimit sets how many headlines are requested per synthesis.
func (e *Engine) SetNewsLimit(n int) {
	if n > 0 {
		e.newsLimit = n
	}
}

// Synthesize builds the signal for ticker. When override is non-nil it is
// used as the sentiment score instead of scoring headlines; headlines are
// still fetched for display. The only error returned for a well-formed
// ticker is one matching core.ErrNoData.
func (e *Engine) Synthesize(ctx context.Context, ticker string, tf core.Timeframe, override *int) (*SignalResult, error) {
	start := e.now()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, core.WrapError(core.ErrSymbolInvalid, errors.New("ticker is empty"))
	}
	tf = core.ParseTimeframe(string(tf))

	var (
		s         series.Series
		seriesErr error
		headlines []core.Headline
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		s, seriesErr = e.prices.Fetch(ctx, ticker, tf)
	})
	if e.news != nil {
		wg.Go(func() {
			headlines = e.news.Fetch(ctx, ticker, e.newsLimit)
		})
	}
	wg.Wait()

	if seriesErr != nil {
		if !errors.Is(seriesErr, core.ErrNoData) {
			seriesErr = core.WrapError(core.ErrNoData, seriesErr)
		}
		e.logger.Error("no usable price series", zap.String("ticker", ticker), zap.Error(seriesErr))
		return nil, seriesErr
	}

	frame := indicator.Compute(s.Bars)
	snap, ok := frame.Latest()
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("empty series for %s", ticker))
	}

	sent, overridden := e.sentiment(headlines, override)
	if e.recorder != nil {
		e.recorder.RecordSentiment(sent.Score)
	}

	bias := indicator.ClassifyBias(snap)
	pred := predict.Fuse(predict.InputFrom(snap, sent.Score))

	if headlines == nil {
		headlines = []core.Headline{}
	}

	result := &SignalResult{
		Ticker:        ticker,
		Timeframe:     tf,
		Mode:          s.Mode,
		Price:         round(snap.Price, 2),
		ChangePercent: round(snap.Return.Or(0)*100, 2),
		Volume:        snap.Volume,
		MarketBias:    bias,
		Technical:     technical(snap),
		Prediction:    pred,
		Sentiment: SentimentSummary{
			Score:      sent.Score,
			Label:      sent.Label,
			Summary:    sent.Explanation,
			Overridden: overridden,
			Components: factors(snap, pred),
			News:       headlines,
		},
		Charts: chart(frame, s.Window),
		AIExplanation: Explanation{
			Summary: fmt.Sprintf("Model predicts %.2f based on %s trend.", pred.EstimatedPrice, strings.ToLower(string(bias))),
			Drivers: []string{"Momentum", "Volatility", "Technical Support"},
		},
		GeneratedAt: e.now().UTC(),
	}

	insight := e.enrich(ctx, ticker, snap, headlines)
	result.AIAnalysis = &insight

	if e.recorder != nil {
		e.recorder.RecordSynthesis(string(s.Mode), e.now().Sub(start))
	}
	e.logger.Info("signal synthesized",
		zap.String("ticker", ticker),
		zap.String("timeframe", string(tf)),
		zap.String("mode", string(s.Mode)),
		zap.String("bias", string(bias)),
		zap.Int("sentiment", sent.Score),
		zap.Float64("estimate", pred.EstimatedPrice),
	)
	return result, nil
}

func (e *Engine) sentiment(headlines []core.Headline, override *int) (sentiment.Result, bool) {
	if override != nil {
		return sentiment.FromScore(min(max(*override, -100), 100)), true
	}
	if e.scorer == nil {
		return sentiment.FromScore(0), false
	}
	return e.scorer.Score(headlines), false
}

func (e *Engine) enrich(ctx context.Context, ticker string, snap indicator.Snapshot, headlines []core.Headline) core.Insight {
	if e.narrator == nil {
		e.recordEnrichment(EnrichmentDisabled)
		return fallback.Insight(fallback.EnrichmentDisabled, 0)
	}

	ctx, cancel := context.WithTimeout(ctx, e.enrichTimeout)
	defer cancel()

	insight, err := e.narrator.Summarize(ctx, ticker, snap, headlines)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = core.WrapError(core.ErrLLMTimeout, err)
		}
		e.logger.Warn("enrichment failed, using fallback",
			zap.String("ticker", ticker),
			zap.Error(err))
		e.recordEnrichment(EnrichmentFailed)
		return fallback.Insight(fallback.EnrichmentFailed, round(snap.RSI.Or(50), 2))
	}

	e.recordEnrichment(EnrichmentOK)
	return insight
}

func (e *Engine) recordEnrichment(status string) {
	if e.recorder != nil {
		e.recorder.RecordEnrichment(status)
	}
}

func technical(s indicator.Snapshot) TechnicalAnalysis {
	summary := "RSI is unavailable."
	if s.RSI.Defined {
		summary = fmt.Sprintf("RSI is %.1f.", s.RSI.Value)
	}
	summary += " Bollinger Bands squeeze indicates potential breakout."

	return TechnicalAnalysis{
		SMA20:      s.SMA20.Round(2),
		SMA50:      s.SMA50.Round(2),
		RSI:        s.RSI.Round(2),
		MACD:       s.MACD.Round(2),
		MACDSignal: s.MACDSignal.Round(2),
		MACDHist:   s.MACDHist.Round(2),
		BBUpper:    s.BBUpper.Round(2),
		BBMiddle:   s.BBMiddle.Round(2),
		BBLower:    s.BBLower.Round(2),
		Volatility: s.Volatility.Round(4),
		Momentum:   s.Momentum.Round(2),
		Support:    round(s.Support, 2),
		Resistance: round(s.Resistance, 2),
		Summary:    summary,
	}
}

func factors(s indicator.Snapshot, p predict.Prediction) Factors {
	return Factors{
		PriceMomentum:       round(s.Momentum.Or(0), 2),
		TechnicalIndicators: round(s.RSI.Or(50)-50, 1),
		VolumeActivity:      0,
		VolatilityAdj:       round(p.VolatilityFactor*-100, 1),
	}
}

func chart(f *indicator.Frame, w series.Window) []ChartPoint {
	layout := "2006-01-02"
	if !strings.HasSuffix(w.Interval, "d") {
		layout = "2006-01-02 15:04"
	}

	from := max(f.Len()-ChartBars, 0)
	points := make([]ChartPoint, 0, f.Len()-from)
	for i := from; i < f.Len(); i++ {
		b := f.Bars[i]
		points = append(points, ChartPoint{
			Date:   b.Time.Format(layout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			SMA50:  indicator.ReadingOf(f.SMA50[i]).Round(2),
		})
	}
	return points
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
