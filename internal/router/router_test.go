// internal/router/router_test.go
package router

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/marketmind/internal/engine"
	"github.com/newthinker/marketmind/internal/indicator"
	"github.com/newthinker/marketmind/internal/notifier"
	"github.com/newthinker/marketmind/internal/predict"
)

type mockNotifier struct {
	mu          sync.Mutex
	name        string
	received    []notifier.Alert
	batchCalled bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Send(_ context.Context, alert notifier.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, alert)
	return nil
}

func (m *mockNotifier) SendBatch(_ context.Context, alerts []notifier.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalled = true
	m.received = append(m.received, alerts...)
	return nil
}

func result(ticker string, bias indicator.Bias, confidence int) *engine.SignalResult {
	return &engine.SignalResult{
		Ticker:      ticker,
		MarketBias:  bias,
		Prediction:  predict.Prediction{Confidence: confidence},
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func newTestRouter(cfg Config) (*Router, *mockNotifier, *time.Time) {
	registry := notifier.NewRegistry()
	mock := &mockNotifier{name: "mock"}
	registry.Register(mock)

	r := New(cfg, registry, nil)
	clock := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, mock, &clock
}

func TestRouter_Route_PassesFilters(t *testing.T) {
	r, mock, _ := newTestRouter(DefaultConfig())

	if !r.Route(context.Background(), result("AAPL", indicator.BiasPositive, 80)) {
		t.Fatal("expected alert to be sent")
	}
	if len(mock.received) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(mock.received))
	}
	if mock.received[0].Ticker != "AAPL" || mock.received[0].Bias != "Positive" {
		t.Errorf("unexpected alert %+v", mock.received[0])
	}
}

func TestRouter_Route_Filtered(t *testing.T) {
	tests := []struct {
		name string
		res  *engine.SignalResult
	}{
		{"low confidence", result("AAPL", indicator.BiasPositive, 60)},
		{"bias not listed", result("AAPL", indicator.BiasNeutral, 90)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock, _ := newTestRouter(DefaultConfig())
			if r.Route(context.Background(), tt.res) {
				t.Error("expected result to be filtered")
			}
			if len(mock.received) != 0 {
				t.Errorf("expected no alerts, got %d", len(mock.received))
			}
		})
	}
}

func TestRouter_Route_EmptyBiasesAllowsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Biases = nil
	r, mock, _ := newTestRouter(cfg)

	if !r.Route(context.Background(), result("AAPL", indicator.BiasNeutral, 90)) {
		t.Error("expected neutral bias to pass with empty bias list")
	}
	if len(mock.received) != 1 {
		t.Errorf("expected 1 alert, got %d", len(mock.received))
	}
}

func TestRouter_Route_Cooldown(t *testing.T) {
	r, mock, clock := newTestRouter(DefaultConfig())
	ctx := context.Background()

	if !r.Route(ctx, result("AAPL", indicator.BiasPositive, 80)) {
		t.Fatal("expected first alert")
	}
	if r.Route(ctx, result("AAPL", indicator.BiasPositive, 85)) {
		t.Error("expected alert within cooldown to be suppressed")
	}

	*clock = clock.Add(61 * time.Minute)
	if !r.Route(ctx, result("AAPL", indicator.BiasPositive, 85)) {
		t.Error("expected alert after cooldown")
	}
	if len(mock.received) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(mock.received))
	}
}

func TestRouter_Route_DifferentTickersDifferentCooldown(t *testing.T) {
	r, mock, _ := newTestRouter(DefaultConfig())
	ctx := context.Background()

	r.Route(ctx, result("AAPL", indicator.BiasPositive, 80))
	r.Route(ctx, result("MSFT", indicator.BiasNegative, 80))

	if len(mock.received) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(mock.received))
	}
}

func TestRouter_Route_OnBiasChange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cooldown = 0
	cfg.OnBiasChange = true
	r, mock, _ := newTestRouter(cfg)
	ctx := context.Background()

	steps := []struct {
		bias indicator.Bias
		want bool
	}{
		{indicator.BiasPositive, true},  // first observation counts as a change
		{indicator.BiasPositive, false}, // same bias
		{indicator.BiasNeutral, false},  // filtered by bias list
		{indicator.BiasPositive, true},  // neutral was observed in between
	}
	for i, step := range steps {
		if got := r.Route(ctx, result("AAPL", step.bias, 80)); got != step.want {
			t.Errorf("step %d (%s): expected %v, got %v", i, step.bias, step.want, got)
		}
	}
	if len(mock.received) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(mock.received))
	}
}

func TestRouter_Route_NilRegistry(t *testing.T) {
	r := New(DefaultConfig(), nil, nil)
	if !r.Route(context.Background(), result("AAPL", indicator.BiasPositive, 80)) {
		t.Error("expected passing result to report sent without channels")
	}
	if r.Route(context.Background(), nil) {
		t.Error("expected nil result to be ignored")
	}
}

func TestRouter_RouteBatch(t *testing.T) {
	r, mock, _ := newTestRouter(DefaultConfig())

	sent := r.RouteBatch(context.Background(), []*engine.SignalResult{
		result("AAPL", indicator.BiasPositive, 80),
		result("MSFT", indicator.BiasNeutral, 90),
		result("TSLA", indicator.BiasNegative, 75),
		result("GOOG", indicator.BiasPositive, 50),
		nil,
	})

	if sent != 2 {
		t.Errorf("expected 2 alerts sent, got %d", sent)
	}
	if !mock.batchCalled {
		t.Error("expected SendBatch to be used")
	}
	if len(mock.received) != 2 {
		t.Errorf("expected 2 alerts received, got %d", len(mock.received))
	}
}

func TestRouter_RouteBatch_NothingPasses(t *testing.T) {
	r, mock, _ := newTestRouter(DefaultConfig())

	sent := r.RouteBatch(context.Background(), []*engine.SignalResult{
		result("AAPL", indicator.BiasNeutral, 80),
	})

	if sent != 0 {
		t.Errorf("expected nothing sent, got %d", sent)
	}
	if mock.batchCalled {
		t.Error("expected no batch for an empty selection")
	}
}

func TestRouter_GetStats(t *testing.T) {
	r, _, _ := newTestRouter(DefaultConfig())
	r.Route(context.Background(), result("AAPL", indicator.BiasPositive, 80))

	stats := r.GetStats()
	want := map[string]any{
		"cooldowns_active": 1,
		"tickers_seen":     1,
		"min_confidence":   70,
		"cooldown_seconds": float64(3600),
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, stats[k])
		}
	}
}

func TestRouter_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinConfidence != 70 {
		t.Errorf("expected min confidence 70, got %d", cfg.MinConfidence)
	}
	if cfg.Cooldown != time.Hour {
		t.Errorf("expected 1h cooldown, got %v", cfg.Cooldown)
	}
	if !reflect.DeepEqual(cfg.Biases, []string{"Positive", "Negative"}) {
		t.Errorf("unexpected biases %v", cfg.Biases)
	}
	if cfg.OnBiasChange {
		t.Error("expected OnBiasChange off by default")
	}
}

func TestRouter_CleanupExpiredCooldowns(t *testing.T) {
	cfg := Config{Cooldown: 100 * time.Millisecond}
	r, _, clock := newTestRouter(cfg)

	r.mu.Lock()
	r.cooldowns["AAPL"] = clock.Add(-300 * time.Millisecond)
	r.cooldowns["MSFT"] = clock.Add(-300 * time.Millisecond)
	r.cooldowns["GOOG"] = *clock
	r.mu.Unlock()

	if removed := r.CleanupExpiredCooldowns(); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.cooldowns) != 1 {
		t.Errorf("expected 1 cooldown left, got %d", len(r.cooldowns))
	}
}
