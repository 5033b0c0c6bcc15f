// internal/meta/narrator_test.go
package meta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/indicator"
	"github.com/newthinker/marketmind/internal/llm"
)

type mockLLMProvider struct {
	response string
	err      error
	lastReq  llm.ChatRequest
}

func (m *mockLLMProvider) Name() string { return "mock" }

func (m *mockLLMProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.ChatResponse{Content: m.response}, nil
}

func snapshot() indicator.Snapshot {
	return indicator.Snapshot{
		Price:      101,
		RSI:        indicator.ReadingOf(62.345),
		MACD:       indicator.ReadingOf(1.2),
		Support:    95,
		Resistance: 110.5,
	}
}

func TestNarrator_Summarize(t *testing.T) {
	provider := &mockLLMProvider{response: "```json\n{\"primary_factor\": \"Earnings\", \"reasoning_summary\": \"RSI agrees with upbeat news.\", \"outlook\": \"bullish\", \"confidence_score\": 81.6}\n```"}
	n := NewNarrator(provider, nil)

	got, err := n.Summarize(context.Background(), "AAPL", snapshot(), []core.Headline{{Title: "Apple beats", Source: "Reuters"}})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	want := core.Insight{
		PrimaryFactor:    "Earnings",
		ReasoningSummary: "RSI agrees with upbeat news.",
		Outlook:          OutlookBullish,
		ConfidenceScore:  82,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if !provider.lastReq.JSONMode {
		t.Error("expected JSON mode request")
	}
	if !strings.Contains(provider.lastReq.Messages[0].Content, "- Apple beats (Reuters)") {
		t.Errorf("expected headline in prompt, got %q", provider.lastReq.Messages[0].Content)
	}
}

func TestNarrator_ProviderError(t *testing.T) {
	n := NewNarrator(&mockLLMProvider{err: errors.New("rate limited")}, nil)

	_, err := n.Summarize(context.Background(), "AAPL", snapshot(), nil)
	if !errors.Is(err, core.ErrEnrichmentFailed) {
		t.Errorf("expected ErrEnrichmentFailed, got %v", err)
	}
}

func TestNarrator_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := NewNarrator(&mockLLMProvider{err: context.Canceled}, nil)

	_, err := n.Summarize(ctx, "AAPL", snapshot(), nil)
	if !errors.Is(err, core.ErrLLMTimeout) {
		t.Errorf("expected ErrLLMTimeout, got %v", err)
	}
}

func TestNarrator_MalformedReply(t *testing.T) {
	for _, reply := range []string{
		"I think the stock will go up.",
		`{"primary_factor": "Macro", "outlook": "Bearish", "confidence_score": 40}`,
		"   ",
	} {
		n := NewNarrator(&mockLLMProvider{response: reply}, nil)
		if _, err := n.Summarize(context.Background(), "AAPL", snapshot(), nil); err == nil {
			t.Errorf("expected error for reply %q", reply)
		}
	}
}

func TestParseInsight_Normalizes(t *testing.T) {
	got, err := ParseInsight(`{"primary_factor": " Momentum ", "reasoning_summary": "x", "outlook": "sideways", "confidence_score": 140}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.PrimaryFactor != "Momentum" {
		t.Errorf("expected trimmed factor, got %q", got.PrimaryFactor)
	}
	if got.Outlook != OutlookNeutral {
		t.Errorf("expected unknown outlook to map to neutral, got %s", got.Outlook)
	}
	if got.ConfidenceScore != 100 {
		t.Errorf("expected confidence clamped to 100, got %d", got.ConfidenceScore)
	}
}

func TestBuildPrompt(t *testing.T) {
	var headlines []core.Headline
	for i := 0; i < 12; i++ {
		headlines = append(headlines, core.Headline{Title: fmt.Sprintf("headline %d", i), Source: "Wire"})
	}

	prompt := BuildPrompt("AAPL", snapshot(), headlines)

	for _, want := range []string{"AAPL", "Current RSI: 62.35", "Support: 95.00", "Resistance: 110.50", "headline 7 (Wire)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, "headline 8") {
		t.Error("expected headlines beyond the limit to be dropped")
	}
	if n := strings.Count(prompt, "(Wire)"); n != PromptHeadlines {
		t.Errorf("expected %d headlines, got %d", PromptHeadlines, n)
	}

	empty := BuildPrompt("AAPL", indicator.Snapshot{}, nil)
	for _, want := range []string{"Current RSI: n/a", "- (none)"} {
		if !strings.Contains(empty, want) {
			t.Errorf("expected empty prompt to contain %q", want)
		}
	}
}
