// internal/router/router.go
package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/marketmind/internal/engine"
	"github.com/newthinker/marketmind/internal/notifier"
	"go.uber.org/zap"
)

// Config holds router configuration
type Config struct {
	MinConfidence int           `mapstructure:"min_confidence"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	Biases        []string      `mapstructure:"biases"`
	OnBiasChange  bool          `mapstructure:"on_bias_change"`
}

// DefaultConfig returns default router configuration
func DefaultConfig() Config {
	return Config{
		MinConfidence: 70,
		Cooldown:      1 * time.Hour,
		Biases:        []string{"Positive", "Negative"},
	}
}

// Router decides which watchlist results become alerts and fans them out
// to the notifier registry.
type Router struct {
	cfg       Config
	registry  *notifier.Registry
	logger    *zap.Logger
	cooldowns map[string]time.Time // ticker -> last alert time
	lastBias  map[string]string    // ticker -> last observed bias
	now       func() time.Time
	mu        sync.RWMutex
}

// New creates a new alert router
func New(cfg Config, registry *notifier.Registry, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:       cfg,
		registry:  registry,
		logger:    logger.Named("router"),
		cooldowns: make(map[string]time.Time),
		lastBias:  make(map[string]string),
		now:       time.Now,
	}
}

// Route filters one result and, when it passes, sends it to every
// notifier. It reports whether an alert went out.
func (r *Router) Route(ctx context.Context, res *engine.SignalResult) bool {
	if res == nil {
		return false
	}
	alert := notifier.FromResult(res)

	if !r.admit(alert) {
		r.logger.Debug("signal filtered out",
			zap.String("ticker", alert.Ticker),
			zap.String("bias", alert.Bias),
			zap.Int("confidence", alert.Confidence),
		)
		return false
	}

	if r.registry == nil {
		return true
	}
	errs := r.registry.NotifyAll(ctx, alert)
	for name, err := range errs {
		r.logger.Error("notifier failed",
			zap.String("notifier", name),
			zap.Error(err),
		)
	}

	r.logger.Info("alert routed",
		zap.String("ticker", alert.Ticker),
		zap.String("bias", alert.Bias),
		zap.Int("confidence", alert.Confidence),
		zap.Int("notifiers", r.registry.Len()),
		zap.Int("errors", len(errs)),
	)
	return true
}

// RouteBatch filters several results and sends the survivors as one
// digest per notifier. It returns the number of alerts sent.
func (r *Router) RouteBatch(ctx context.Context, results []*engine.SignalResult) int {
	var alerts []notifier.Alert
	for _, res := range results {
		if res == nil {
			continue
		}
		alert := notifier.FromResult(res)
		if r.admit(alert) {
			alerts = append(alerts, alert)
		}
	}

	if len(alerts) == 0 || r.registry == nil {
		return len(alerts)
	}

	errs := r.registry.NotifyAllBatch(ctx, alerts)
	for name, err := range errs {
		r.logger.Error("notifier failed on batch",
			zap.String("notifier", name),
			zap.Error(err),
		)
	}

	r.logger.Info("batch routed",
		zap.Int("total", len(results)),
		zap.Int("alerts", len(alerts)),
		zap.Int("errors", len(errs)),
	)
	return len(alerts)
}

// admit applies the filters and, on success, starts the ticker's cooldown.
// The observed bias is recorded either way.
func (r *Router) admit(a notifier.Alert) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, seen := r.lastBias[a.Ticker]
	r.lastBias[a.Ticker] = a.Bias

	if a.Confidence < r.cfg.MinConfidence {
		return false
	}

	if len(r.cfg.Biases) > 0 {
		allowed := false
		for _, b := range r.cfg.Biases {
			if strings.EqualFold(b, a.Bias) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if r.cfg.OnBiasChange && seen && prev == a.Bias {
		return false
	}

	now := r.now()
	if last, ok := r.cooldowns[a.Ticker]; ok && now.Sub(last) < r.cfg.Cooldown {
		return false
	}
	r.cooldowns[a.Ticker] = now

	return true
}

// CleanupExpiredCooldowns removes cooldown entries older than 2x the cooldown duration.
func (r *Router) CleanupExpiredCooldowns() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	expiry := r.cfg.Cooldown * 2
	removed := 0

	for ticker, lastTime := range r.cooldowns {
		if now.Sub(lastTime) > expiry {
			delete(r.cooldowns, ticker)
			removed++
		}
	}

	return removed
}

// StartCleanupRoutine starts a background goroutine that periodically cleans up expired cooldowns.
func (r *Router) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := r.CleanupExpiredCooldowns()
				if removed > 0 {
					r.logger.Debug("cleaned up expired cooldowns", zap.Int("removed", removed))
				}
			}
		}
	}()
}

// GetStats returns router statistics
func (r *Router) GetStats() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]any{
		"cooldowns_active": len(r.cooldowns),
		"tickers_seen":     len(r.lastBias),
		"min_confidence":   r.cfg.MinConfidence,
		"cooldown_seconds": r.cfg.Cooldown.Seconds(),
		"biases":           r.cfg.Biases,
		"on_bias_change":   r.cfg.OnBiasChange,
	}
}
