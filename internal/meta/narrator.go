// internal/meta/narrator.go

// Package meta produces the qualitative, LLM-written reading of a signal.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/indicator"
	"github.com/newthinker/marketmind/internal/llm"
	"go.uber.org/zap"
)

// PromptHeadlines is the number of headlines included in the prompt.
const PromptHeadlines = 8

// Outlook values accepted from the model.
const (
	OutlookBullish = "Bullish"
	OutlookBearish = "Bearish"
	OutlookNeutral = "Neutral"
)

// Narrator asks an LLM to reconcile the technical picture with the news.
type Narrator struct {
	llm    llm.Provider
	logger *zap.Logger
}

// NewNarrator creates a narrator backed by provider.
func NewNarrator(provider llm.Provider, logger *zap.Logger) *Narrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{llm: provider, logger: logger.Named("narrator")}
}

// Summarize returns the model's reading of ticker. Any transport error,
// malformed reply or missing field is returned as an error wrapping
// core.ErrEnrichmentFailed; the caller supplies the fallback.
func (n *Narrator) Summarize(ctx context.Context, ticker string, snap indicator.Snapshot, headlines []core.Headline) (core.Insight, error) {
	prompt := BuildPrompt(ticker, snap, headlines)

	reply, err := llm.Ask(ctx, n.llm, narratorSystemPrompt, prompt, true)
	if err != nil {
		if ctx.Err() != nil {
			return core.Insight{}, core.WrapError(core.ErrLLMTimeout, err)
		}
		return core.Insight{}, core.WrapError(core.ErrEnrichmentFailed, err)
	}

	insight, err := ParseInsight(reply)
	if err != nil {
		n.logger.Debug("unusable model reply", zap.String("ticker", ticker), zap.String("reply", reply))
		return core.Insight{}, core.WrapError(core.ErrEnrichmentFailed, err)
	}
	return insight, nil
}

// BuildPrompt renders the technical context and the leading headlines.
func BuildPrompt(ticker string, snap indicator.Snapshot, headlines []core.Headline) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Act as a quantitative hedge fund analyst for %s.\n\n", ticker)

	sb.WriteString("## Technical Context:\n")
	fmt.Fprintf(&sb, "- Current RSI: %s\n", formatReading(snap.RSI))
	fmt.Fprintf(&sb, "- MACD: %s\n", formatReading(snap.MACD))
	fmt.Fprintf(&sb, "- Support: %.2f\n", snap.Support)
	fmt.Fprintf(&sb, "- Resistance: %.2f\n", snap.Resistance)
	sb.WriteString("\n")

	sb.WriteString("## Latest Headlines:\n")
	if len(headlines) == 0 {
		sb.WriteString("- (none)\n")
	}
	for i, h := range headlines {
		if i >= PromptHeadlines {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", h.Title, h.Source)
	}
	sb.WriteString("\n")

	sb.WriteString("## Task:\n")
	sb.WriteString("1. Judge whether the technicals (RSI/MACD) match the news sentiment.\n")
	sb.WriteString("2. Identify the ONE dominant driver for the next 24 hours (Macro, Earnings, Momentum, etc).\n")
	sb.WriteString("3. Give a professional one-sentence outcome projection.\n")

	return sb.String()
}

func formatReading(r indicator.Reading) string {
	if !r.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

type insightReply struct {
	PrimaryFactor    *string  `json:"primary_factor"`
	ReasoningSummary *string  `json:"reasoning_summary"`
	Outlook          *string  `json:"outlook"`
	ConfidenceScore  *float64 `json:"confidence_score"`
}

// ParseInsight decodes a model reply, tolerating markdown code fences.
// Every field must be present.
func ParseInsight(reply string) (core.Insight, error) {
	text := strings.TrimSpace(reply)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var r insightReply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return core.Insight{}, fmt.Errorf("decoding reply: %w", err)
	}

	var missing []string
	if r.PrimaryFactor == nil {
		missing = append(missing, "primary_factor")
	}
	if r.ReasoningSummary == nil {
		missing = append(missing, "reasoning_summary")
	}
	if r.Outlook == nil {
		missing = append(missing, "outlook")
	}
	if r.ConfidenceScore == nil {
		missing = append(missing, "confidence_score")
	}
	if len(missing) > 0 {
		return core.Insight{}, fmt.Errorf("reply missing %s", strings.Join(missing, ", "))
	}

	return core.Insight{
		PrimaryFactor:    strings.TrimSpace(*r.PrimaryFactor),
		ReasoningSummary: strings.TrimSpace(*r.ReasoningSummary),
		Outlook:          normalizeOutlook(*r.Outlook),
		ConfidenceScore:  min(max(int(*r.ConfidenceScore+0.5), 0), 100),
	}, nil
}

func normalizeOutlook(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return OutlookBullish
	case "bearish":
		return OutlookBearish
	default:
		return OutlookNeutral
	}
}

const narratorSystemPrompt = `You are a quantitative market analyst. You combine technical indicators with recent news flow to explain the near-term outlook for a single equity.

Respond ONLY with valid JSON in this format:
{
  "primary_factor": "Factor Name",
  "reasoning_summary": "Brief analysis of technical-news alignment",
  "outlook": "Bullish" | "Bearish" | "Neutral",
  "confidence_score": 0-100
}`
