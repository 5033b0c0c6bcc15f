package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/engine"
	"github.com/newthinker/marketmind/internal/storage/signal"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Watch run outcomes.
const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// Synthesizer produces a signal for one ticker.
type Synthesizer interface {
	Synthesize(ctx context.Context, ticker string, tf core.Timeframe, override *int) (*engine.SignalResult, error)
}

// Archiver stores complete results in cold storage.
type Archiver interface {
	Archive(ctx context.Context, res *engine.SignalResult) (string, error)
	Paths(ctx context.Context, ticker string, day time.Time) ([]string, error)
	Load(ctx context.Context, path string) (*engine.SignalResult, error)
}

// AlertRouter turns watch results into notifications.
type AlertRouter interface {
	Route(ctx context.Context, res *engine.SignalResult) bool
	RouteBatch(ctx context.Context, results []*engine.SignalResult) int
}

// Recorder receives watch run outcomes.
type Recorder interface {
	RecordWatchRun(status string)
	RecordWatchSentiment(ticker string, score int)
}

// App orchestrates synthesis, history persistence and the scheduled
// watchlist.
type App struct {
	engine   Synthesizer
	history  signal.Store
	archive  Archiver
	router   AlertRouter
	digest   bool
	recorder Recorder
	logger   *zap.Logger

	schedule  string
	timeframe core.Timeframe
	watchlist []string

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	lastRun time.Time
	runs    int
	failed  int
	alerts  int
}

// New creates a new App. history may be nil to disable persistence.
func New(eng Synthesizer, history signal.Store, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		engine:    eng,
		history:   history,
		logger:    logger.Named("app"),
		schedule:  "@every 15m",
		timeframe: core.TimeframeMedium,
	}
}

// SetArchiver enables cold storage of full results.
func (a *App) SetArchiver(ar Archiver) {
	a.archive = ar
}

// SetRouter enables alerts for scheduled watch runs. With digest set, each
// run sends one batched message per channel instead of one per ticker.
func (a *App) SetRouter(r AlertRouter, digest bool) {
	a.router = r
	a.digest = digest
}

// SetRecorder sets the watch metrics recorder.
func (a *App) SetRecorder(r Recorder) {
	a.recorder = r
}

// SetSchedule sets the cron schedule and timeframe for watch runs.
func (a *App) SetSchedule(schedule string, tf core.Timeframe) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if schedule != "" {
		a.schedule = schedule
	}
	a.timeframe = tf
}

// SetWatchlist sets the tickers synthesized on each scheduled run.
func (a *App) SetWatchlist(tickers []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watchlist = make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		a.watchlist = append(a.watchlist, t)
	}
}

// GetWatchlist returns the current watchlist tickers.
func (a *App) GetWatchlist() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]string, len(a.watchlist))
	copy(result, a.watchlist)
	return result
}

// Analyze synthesizes a signal and records it. Persistence failures are
// logged; only synthesis errors are returned.
func (a *App) Analyze(ctx context.Context, ticker string, tf core.Timeframe, override *int) (*engine.SignalResult, error) {
	res, err := a.engine.Synthesize(ctx, ticker, tf, override)
	if err != nil {
		return nil, err
	}
	a.persist(ctx, res)
	return res, nil
}

// History returns stored records for ticker, newest first.
func (a *App) History(ctx context.Context, ticker string, limit int) ([]signal.Record, error) {
	if a.history == nil {
		return []signal.Record{}, nil
	}
	return a.history.List(ctx, signal.ListFilter{Ticker: ticker, Limit: limit})
}

// Record returns one stored history record. A record that belongs to a
// different ticker is reported as not found.
func (a *App) Record(ctx context.Context, ticker, id string) (*signal.Record, error) {
	if a.history == nil {
		return nil, core.ErrRecordNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, core.WrapError(core.ErrRecordNotFound, fmt.Errorf("malformed id %q", id))
	}
	rec, err := a.history.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(rec.Ticker, ticker) {
		return nil, core.ErrRecordNotFound
	}
	return rec, nil
}

// Archived loads up to limit full results archived for ticker on day,
// newest first. Unreadable documents are skipped.
func (a *App) Archived(ctx context.Context, ticker string, day time.Time, limit int) ([]*engine.SignalResult, error) {
	results := []*engine.SignalResult{}
	if a.archive == nil {
		return results, nil
	}
	paths, err := a.archive.Paths(ctx, ticker, day)
	if err != nil {
		return nil, err
	}
	for i := len(paths) - 1; i >= 0 && (limit <= 0 || len(results) < limit); i-- {
		res, err := a.archive.Load(ctx, paths[i])
		if err != nil {
			a.logger.Warn("skipping unreadable archive entry",
				zap.String("path", paths[i]),
				zap.Error(err),
			)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *App) persist(ctx context.Context, res *engine.SignalResult) {
	if a.history != nil {
		rec, err := signal.NewRecord(res)
		if err == nil {
			err = a.history.Save(ctx, rec)
		}
		if err != nil {
			a.logger.Warn("failed to save score history",
				zap.String("ticker", res.Ticker),
				zap.Error(err),
			)
		}
	}

	if a.archive != nil {
		if _, err := a.archive.Archive(ctx, res); err != nil {
			a.logger.Warn("failed to archive signal",
				zap.String("ticker", res.Ticker),
				zap.Error(err),
			)
		}
	}
}

// Start runs the watchlist on the configured schedule until ctx is
// cancelled or Stop is called. The watchlist is synthesized once on start.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	schedule := a.schedule
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{a.logger.Sugar()})))
	if _, err := c.AddFunc(schedule, func() { a.RunOnce(ctx) }); err != nil {
		cancel()
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("watch schedule %q: %w", schedule, err))
	}

	a.logger.Info("watcher starting",
		zap.Int("watchlist_count", len(a.GetWatchlist())),
		zap.String("schedule", schedule),
	)

	a.RunOnce(ctx)
	c.Start()

	<-ctx.Done()
	a.logger.Info("watcher shutting down")
	<-c.Stop().Done()
	return ctx.Err()
}

// Stop stops the scheduled loop.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// RunOnce synthesizes every watchlist ticker sequentially.
func (a *App) RunOnce(ctx context.Context) {
	tickers := a.GetWatchlist()
	if len(tickers) == 0 {
		a.logger.Debug("no tickers in watchlist")
		return
	}

	a.mu.RLock()
	tf := a.timeframe
	a.mu.RUnlock()

	var ok, failed, alerts int
	var batch []*engine.SignalResult
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return
		}

		res, err := a.Analyze(ctx, ticker, tf, nil)
		if err != nil {
			failed++
			a.record(RunFailed)
			a.logger.Warn("watch synthesis failed",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			continue
		}
		ok++
		a.record(RunOK)
		a.logger.Info("watch signal",
			zap.String("ticker", res.Ticker),
			zap.String("mode", string(res.Mode)),
			zap.String("bias", string(res.MarketBias)),
			zap.Int("sentiment", res.Sentiment.Score),
			zap.Float64("estimated_price", res.Prediction.EstimatedPrice),
		)
		if a.recorder != nil {
			a.recorder.RecordWatchSentiment(res.Ticker, res.Sentiment.Score)
		}

		switch {
		case a.router == nil:
		case a.digest:
			batch = append(batch, res)
		case a.router.Route(ctx, res):
			alerts++
		}
	}

	if a.router != nil && len(batch) > 0 {
		alerts += a.router.RouteBatch(ctx, batch)
	}

	a.mu.Lock()
	a.lastRun = time.Now()
	a.runs += ok
	a.failed += failed
	a.alerts += alerts
	a.mu.Unlock()
}

func (a *App) record(status string) {
	if a.recorder != nil {
		a.recorder.RecordWatchRun(status)
	}
}

// GetStats returns watcher statistics.
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"running":   a.running,
		"watchlist": len(a.watchlist),
		"schedule":  a.schedule,
		"last_run":  a.lastRun,
		"succeeded": a.runs,
		"failed":    a.failed,
		"alerts":    a.alerts,
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
