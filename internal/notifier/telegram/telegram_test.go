package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/marketmind/internal/notifier"
)

func TestTelegram_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Telegram)(nil)
}

func TestTelegram_New(t *testing.T) {
	tg, err := New("token", "chatid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tg.Name() != "telegram" {
		t.Errorf("expected 'telegram', got '%s'", tg.Name())
	}

	if _, err := New("", "chat"); err == nil {
		t.Error("expected error for missing bot_token")
	}
	if _, err := New("token", ""); err == nil {
		t.Error("expected error for missing chat_id")
	}
}

func TestTelegram_Send(t *testing.T) {
	var receivedPath string
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	tg, _ := New("test-token", "test-chat", WithAPIBase(server.URL))

	alert := notifier.Alert{
		Ticker:         "AAPL",
		Bias:           "Positive",
		Price:          150.25,
		EstimatedPrice: 152.1,
		Range:          [2]float64{149.9, 154.3},
		Confidence:     80,
		Sentiment:      35,
		SentimentLabel: "Positive",
		GeneratedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if err := tg.Send(context.Background(), alert); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path %s", receivedPath)
	}
	if receivedPayload["chat_id"] != "test-chat" {
		t.Errorf("expected chat_id test-chat, got %v", receivedPayload["chat_id"])
	}
	text := receivedPayload["text"].(string)
	for _, want := range []string{"AAPL", "150.25", "152.10", "80%", "Sentiment: 35"} {
		if !strings.Contains(text, want) {
			t.Errorf("message should contain %q, got %q", want, text)
		}
	}
}

func TestTelegram_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer server.Close()

	tg, _ := New("token", "chat", WithAPIBase(server.URL))
	err := tg.Send(context.Background(), notifier.Alert{Ticker: "AAPL"})
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestFormatAlert_Emoji(t *testing.T) {
	tests := map[string]string{
		"Positive": "📈",
		"Negative": "📉",
		"Neutral":  "⏸️",
	}
	for bias, emoji := range tests {
		formatted := formatAlert(notifier.Alert{Ticker: "TSLA", Bias: bias, GeneratedAt: time.Now()})
		if !strings.HasPrefix(formatted, emoji) {
			t.Errorf("%s alert should start with %s, got %q", bias, emoji, formatted)
		}
	}
}

func TestFormatAlert_DemoWarning(t *testing.T) {
	formatted := formatAlert(notifier.Alert{Ticker: "XYZ", Mode: "DEMO", GeneratedAt: time.Now()})
	if !strings.Contains(formatted, "Demo data") {
		t.Error("demo alerts should be flagged")
	}
}

func TestTelegram_SendBatch_Empty(t *testing.T) {
	tg, _ := New("token", "chat")

	if err := tg.SendBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch should not return error: %v", err)
	}
}
