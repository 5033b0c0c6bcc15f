package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/engine"
	"github.com/newthinker/marketmind/internal/indicator"
	"github.com/newthinker/marketmind/internal/predict"
	"github.com/newthinker/marketmind/internal/sentiment"
)

type mockNotifier struct {
	name       string
	sendCalled int
	batchCalls int
	shouldFail bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Send(ctx context.Context, alert Alert) error {
	m.sendCalled++
	if m.shouldFail {
		return errors.New("send failed")
	}
	return nil
}

func (m *mockNotifier) SendBatch(ctx context.Context, alerts []Alert) error {
	m.batchCalls++
	if m.shouldFail {
		return errors.New("batch send failed")
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	err := r.Register(mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duplicate registration should fail
	err = r.Register(mock)
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	r.Register(mock)

	n, err := r.Get("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Name() != "test" {
		t.Errorf("expected 'test', got '%s'", n.Name())
	}

	// Non-existent notifier
	_, err = r.Get("nonexistent")
	if err == nil {
		t.Error("expected error for non-existent notifier")
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry()

	r.Register(&mockNotifier{name: "b"})
	r.Register(&mockNotifier{name: "a"})

	all := r.GetAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 notifiers, got %d", len(all))
	}
	if all[0].Name() != "a" || all[1].Name() != "b" {
		t.Errorf("expected notifiers ordered by name, got %s, %s", all[0].Name(), all[1].Name())
	}
}

func TestRegistry_NotifyAll(t *testing.T) {
	r := NewRegistry()

	mock1 := &mockNotifier{name: "n1"}
	mock2 := &mockNotifier{name: "n2"}
	r.Register(mock1)
	r.Register(mock2)

	errs := r.NotifyAll(context.Background(), Alert{Ticker: "TEST", Bias: "Positive"})

	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	if mock1.sendCalled != 1 {
		t.Errorf("expected mock1.sendCalled = 1, got %d", mock1.sendCalled)
	}
	if mock2.sendCalled != 1 {
		t.Errorf("expected mock2.sendCalled = 1, got %d", mock2.sendCalled)
	}
}

func TestRegistry_NotifyAll_WithFailure(t *testing.T) {
	r := NewRegistry()

	mock1 := &mockNotifier{name: "n1"}
	mock2 := &mockNotifier{name: "n2", shouldFail: true}
	r.Register(mock1)
	r.Register(mock2)

	errs := r.NotifyAll(context.Background(), Alert{Ticker: "TEST", Bias: "Positive"})

	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %d", len(errs))
	}
	if _, ok := errs["n2"]; !ok {
		t.Error("expected error from n2")
	}
}

func TestRegistry_NotifyAllBatch(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "batch"}
	r.Register(mock)

	alerts := []Alert{
		{Ticker: "A", Bias: "Positive"},
		{Ticker: "B", Bias: "Negative"},
	}
	errs := r.NotifyAllBatch(context.Background(), alerts)

	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if mock.batchCalls != 1 {
		t.Errorf("expected batchCalls = 1, got %d", mock.batchCalls)
	}
}

func TestRegistry_NotifyAllBatch_Empty(t *testing.T) {
	r := NewRegistry()
	mock := &mockNotifier{name: "batch"}
	r.Register(mock)

	r.NotifyAllBatch(context.Background(), nil)
	if mock.batchCalls != 0 {
		t.Errorf("expected no batch call for empty alerts, got %d", mock.batchCalls)
	}
}

func TestFromResult(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := &engine.SignalResult{
		Ticker:        "AAPL",
		Mode:          core.ModeLive,
		Price:         190.5,
		MarketBias:    indicator.BiasPositive,
		Prediction:    predict.Prediction{EstimatedPrice: 192.1, Range: [2]float64{189, 195.2}, Confidence: 80},
		Sentiment:     engine.SentimentSummary{Score: 45, Label: sentiment.VeryPositive},
		AIExplanation: engine.Explanation{Summary: "Model predicts 192.10 based on positive trend."},
		GeneratedAt:   at,
	}

	a := FromResult(res)
	if a.Ticker != "AAPL" || a.Bias != "Positive" || a.Confidence != 80 || a.Sentiment != 45 {
		t.Errorf("unexpected alert: %+v", a)
	}
	if a.Summary != "Model predicts 192.10 based on positive trend." {
		t.Errorf("expected explanation summary, got %q", a.Summary)
	}

	res.AIAnalysis = &core.Insight{ReasoningSummary: "Earnings beat drives momentum."}
	if got := FromResult(res).Summary; got != "Earnings beat drives momentum." {
		t.Errorf("expected LLM reasoning to win, got %q", got)
	}
}
