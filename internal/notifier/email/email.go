// Package email implements an SMTP-based email notifier
package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"github.com/newthinker/marketmind/internal/notifier"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     sendFunc
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) (*Email, error) {
	if host == "" || from == "" || len(to) == 0 {
		return nil, fmt.Errorf("email: host, from, and to are required")
	}
	if port == 0 {
		port = 587
	}
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}, nil
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, alert notifier.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := fmt.Sprintf("MarketMind Signal: %s %s", alert.Ticker, alert.Bias)
	return e.sendEmail(subject, "text/plain", formatAlert(alert))
}

func (e *Email) SendBatch(ctx context.Context, alerts []notifier.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("MarketMind Digest: %d Watchlist Signals", len(alerts))

	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString("<h2>MarketMind Watchlist Signals</h2>")
	fmt.Fprintf(&sb, "<p>Generated at: %s</p>", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("<hr>")

	for _, alert := range alerts {
		sb.WriteString(formatAlertHTML(alert))
		sb.WriteString("<hr>")
	}

	sb.WriteString("</body></html>")

	return e.sendEmail(subject, "text/html", sb.String())
}

func formatAlert(a notifier.Alert) string {
	var sb strings.Builder
	sb.WriteString("MarketMind Signal\n\n")
	fmt.Fprintf(&sb, "Ticker: %s\n", a.Ticker)
	fmt.Fprintf(&sb, "Bias: %s\n", a.Bias)
	fmt.Fprintf(&sb, "Price: %.2f\n", a.Price)
	fmt.Fprintf(&sb, "Estimated: %.2f (%.2f - %.2f)\n", a.EstimatedPrice, a.Range[0], a.Range[1])
	fmt.Fprintf(&sb, "Confidence: %d%%\n", a.Confidence)
	fmt.Fprintf(&sb, "Sentiment: %d (%s)\n", a.Sentiment, a.SentimentLabel)
	if a.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", a.Summary)
	}
	fmt.Fprintf(&sb, "Mode: %s\n", a.Mode)
	fmt.Fprintf(&sb, "Time: %s\n", a.GeneratedAt.Format("2006-01-02 15:04:05"))
	return sb.String()
}

func formatAlertHTML(a notifier.Alert) string {
	color := "#6c757d"
	switch a.Bias {
	case "Positive":
		color = "#28a745"
	case "Negative":
		color = "#dc3545"
	}

	return fmt.Sprintf(`
<div style="margin: 10px 0;">
  <h3 style="color: %s;">%s - %s</h3>
  <p><strong>Price:</strong> %.2f &rarr; %.2f</p>
  <p><strong>Confidence:</strong> %d%%</p>
  <p><strong>Sentiment:</strong> %d (%s)</p>
  <p>%s</p>
  <p><small>%s</small></p>
</div>
`,
		color,
		html.EscapeString(a.Ticker),
		html.EscapeString(a.Bias),
		a.Price,
		a.EstimatedPrice,
		a.Confidence,
		a.Sentiment,
		html.EscapeString(a.SentimentLabel),
		html.EscapeString(a.Summary),
		a.GeneratedAt.Format("2006-01-02 15:04:05"),
	)
}

func (e *Email) sendEmail(subject, contentType, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		contentType,
		body,
	)

	if err := e.send(addr, auth, e.from, e.to, []byte(msg)); err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}
	return nil
}
