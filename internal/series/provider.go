package series

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/marketmind/internal/collector"
	"github.com/newthinker/marketmind/internal/core"
	"go.uber.org/zap"
)

// Fallback reasons reported to the Recorder.
const (
	ReasonSourceError  = "source_error"
	ReasonNoData       = "no_data"
	ReasonInsufficient = "insufficient_history"
	ReasonNoSource     = "no_source"
)

// Series is a bar sequence together with its provenance.
type Series struct {
	Bars   []core.Bar
	Mode   core.SeriesMode
	Window Window
}

// Recorder receives demo fallback events.
type Recorder interface {
	RecordPriceFallback(reason string)
}

// Provider fetches live bars and transparently degrades to demo data.
type Provider struct {
	source  collector.PriceSource
	demo    *DemoSynthesizer
	timeout time.Duration
	minBars int
	logger  *zap.Logger
	metrics Recorder
}

// Config holds provider settings.
type Config struct {
	Timeout time.Duration
	MinBars int
}

// NewProvider creates a provider. source may be nil, in which case every
// request is served from the demo synthesizer.
func NewProvider(source collector.PriceSource, demo *DemoSynthesizer, cfg Config, logger *zap.Logger) *Provider {
	if demo == nil {
		demo = NewDemoSynthesizer(nil, nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MinBars <= 0 {
		cfg.MinBars = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		source:  source,
		demo:    demo,
		timeout: cfg.Timeout,
		minBars: cfg.MinBars,
		logger:  logger.Named("series"),
	}
}

// SetRecorder attaches a fallback recorder.
func (p *Provider) SetRecorder(r Recorder) {
	p.metrics = r
}

// Fetch returns bars for ticker over the timeframe's window. Live data that
// is missing, errored or shorter than the minimum is replaced by a demo
// series tagged ModeDemo. Only a demo series that is itself empty yields an
// error, core.ErrNoData.
func (p *Provider) Fetch(ctx context.Context, ticker string, tf core.Timeframe) (Series, error) {
	w := WindowFor(tf)

	bars, reason := p.fetchLive(ctx, ticker, w)
	if reason == "" {
		return Series{Bars: bars, Mode: core.ModeLive, Window: w}, nil
	}

	if p.metrics != nil {
		p.metrics.RecordPriceFallback(reason)
	}

	demo := p.demo.Generate()
	if len(demo) == 0 {
		return Series{}, core.WrapError(core.ErrNoData,
			fmt.Errorf("demo synthesis produced no bars for %s", ticker))
	}

	return Series{Bars: demo, Mode: core.ModeDemo, Window: Window{Period: "60d", Interval: "1d"}}, nil
}

// fetchLive returns sanitized live bars, or a non-empty fallback reason.
func (p *Provider) fetchLive(ctx context.Context, ticker string, w Window) ([]core.Bar, string) {
	if p.source == nil {
		p.logger.Debug("no price source configured, using demo data", zap.String("ticker", ticker))
		return nil, ReasonNoSource
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.source.FetchBars(ctx, ticker, w.Period, w.Interval)
	if err != nil {
		p.logger.Warn("live data failed, switching to demo mode",
			zap.String("ticker", ticker),
			zap.String("source", p.source.Name()),
			zap.Error(core.WrapError(core.ErrDataUnavailable, err)),
		)
		return nil, ReasonSourceError
	}

	bars := Sanitize(raw)
	switch {
	case len(bars) == 0:
		p.logger.Warn("live data empty, switching to demo mode", zap.String("ticker", ticker))
		return nil, ReasonNoData
	case len(bars) < p.minBars:
		p.logger.Warn("live data insufficient, switching to demo mode",
			zap.String("ticker", ticker),
			zap.Int("bars", len(bars)),
			zap.Int("min_bars", p.minBars),
			zap.Error(core.ErrInsufficientHistory),
		)
		return nil, ReasonInsufficient
	}

	return bars, ""
}

// Sanitize orders bars by time, drops bars that fail core.Bar.IsValid, and
// keeps only the last bar for any repeated timestamp.
func Sanitize(bars []core.Bar) []core.Bar {
	out := make([]core.Bar, 0, len(bars))
	for _, b := range bars {
		if !b.IsValid() {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for i, b := range out {
		if i+1 < len(out) && out[i+1].Time.Equal(b.Time) {
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}
