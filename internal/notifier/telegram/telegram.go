package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/marketmind/internal/notifier"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends alerts through the Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// Option configures a Telegram notifier
type Option func(*Telegram)

// WithAPIBase points the notifier at a different Bot API host
func WithAPIBase(u string) Option {
	return func(t *Telegram) { t.apiBase = strings.TrimSuffix(u, "/") }
}

// New creates a new Telegram notifier
func New(botToken, chatID string, opts ...Option) (*Telegram, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat_id is required")
	}
	t := &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Send(ctx context.Context, alert notifier.Alert) error {
	return t.sendMessage(ctx, formatAlert(alert))
}

func (t *Telegram) SendBatch(ctx context.Context, alerts []notifier.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *%d Watchlist Signals*\n\n", len(alerts))

	for i, alert := range alerts {
		sb.WriteString(formatAlert(alert))
		if i < len(alerts)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return t.sendMessage(ctx, sb.String())
}

func formatAlert(a notifier.Alert) string {
	var sb strings.Builder

	emoji := "⏸️"
	switch a.Bias {
	case "Positive":
		emoji = "📈"
	case "Negative":
		emoji = "📉"
	}

	fmt.Fprintf(&sb, "%s *%s* - %s\n", emoji, a.Ticker, a.Bias)
	fmt.Fprintf(&sb, "💰 Price: %.2f → %.2f (%.2f–%.2f)\n", a.Price, a.EstimatedPrice, a.Range[0], a.Range[1])
	fmt.Fprintf(&sb, "📊 Confidence: %d%%\n", a.Confidence)
	fmt.Fprintf(&sb, "📰 Sentiment: %d (%s)\n", a.Sentiment, a.SentimentLabel)

	if a.Summary != "" {
		fmt.Fprintf(&sb, "💡 %s\n", a.Summary)
	}
	if a.Mode == "DEMO" {
		sb.WriteString("⚠️ Demo data\n")
	}

	fmt.Fprintf(&sb, "⏰ Time: %s", a.GeneratedAt.Format("2006-01-02 15:04:05"))

	return sb.String()
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
