package news

import (
	"context"
	"sort"
	"time"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// DefaultLimit is the number of headlines returned when none is requested.
const DefaultLimit = 12

// Fetch outcomes reported to a Recorder.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Fetcher returns recent headlines for a ticker.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, limit int) []core.Headline
}

// Recorder receives per-source fetch outcomes.
type Recorder interface {
	RecordNewsFetch(source, status string)
}

// Aggregator queries all sources concurrently and merges their results.
// A failing or slow source only loses its own headlines.
type Aggregator struct {
	sources  []Source
	timeout  time.Duration
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// NewAggregator creates an aggregator over sources. Their order decides
// which copy of a duplicate headline is kept.
func NewAggregator(sources []Source, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		sources: sources,
		timeout: timeout,
		logger:  logger.Named("news"),
		now:     time.Now,
	}
}

// SetRecorder sets the fetch outcome recorder.
func (a *Aggregator) SetRecorder(r Recorder) {
	a.recorder = r
}

// Fetch returns at most limit deduplicated headlines, newest first.
func (a *Aggregator) Fetch(ctx context.Context, ticker string, limit int) []core.Headline {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(a.sources) == 0 {
		return nil
	}

	p := pool.NewWithResults[[]core.Headline]().WithMaxGoroutines(len(a.sources))
	for _, src := range a.sources {
		p.Go(func() []core.Headline {
			return a.search(ctx, src, ticker)
		})
	}

	var all []core.Headline
	for _, hs := range p.Wait() {
		all = append(all, hs...)
	}

	merged := Dedup(all)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	Relabel(merged, a.now())

	if len(merged) == 0 {
		a.logger.Info("no headlines found",
			zap.String("ticker", ticker),
			zap.Error(core.ErrNoNewsFound))
	}
	return merged
}

func (a *Aggregator) search(ctx context.Context, src Source, ticker string) []core.Headline {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	headlines, err := src.Search(ctx, ticker)
	switch {
	case err != nil:
		a.logger.Warn("news source failed",
			zap.String("source", src.Name()),
			zap.String("ticker", ticker),
			zap.Error(err))
		a.record(src.Name(), StatusError)
		return nil
	case len(headlines) == 0:
		a.record(src.Name(), StatusEmpty)
	default:
		a.record(src.Name(), StatusOK)
	}

	a.logger.Debug("news source fetched",
		zap.String("source", src.Name()),
		zap.Int("count", len(headlines)))
	return headlines
}

func (a *Aggregator) record(source, status string) {
	if a.recorder != nil {
		a.recorder.RecordNewsFetch(source, status)
	}
}

// Relabel sets each headline's relative published label as seen at now.
func Relabel(headlines []core.Headline, now time.Time) {
	for i := range headlines {
		headlines[i].Published = RelativeLabel(headlines[i].PublishedAt, now)
	}
}
