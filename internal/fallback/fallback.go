// Package fallback holds the canned payloads used when a best-effort step
// of signal synthesis degrades.
package fallback

import (
	"fmt"

	"github.com/newthinker/marketmind/internal/core"
)

// Kind names a recoverable failure.
type Kind string

const (
	// NoNews means no source returned any headline.
	NoNews Kind = "no_news"
	// EnrichmentDisabled means no language model is configured.
	EnrichmentDisabled Kind = "enrichment_disabled"
	// EnrichmentFailed means the model call errored, timed out or returned
	// an unusable response.
	EnrichmentFailed Kind = "enrichment_failed"
)

// NoNewsExplanation is the sentiment explanation used when there are no
// headlines to score.
const NoNewsExplanation = "No recent impactful news detected, assuming neutral market sentiment."

// Insight returns the canned narrative for kind. rsi is the latest RSI
// reading and is only used by EnrichmentFailed.
func Insight(kind Kind, rsi float64) core.Insight {
	switch kind {
	case EnrichmentFailed:
		return core.Insight{
			PrimaryFactor:    "Quantitative Edge",
			ReasoningSummary: fmt.Sprintf("Alignment of RSI (%.2f) and price action confirms current trend.", rsi),
			Outlook:          "Neutral",
			ConfidenceScore:  75,
		}
	default:
		return core.Insight{
			PrimaryFactor:    "Data Sync Needed",
			ReasoningSummary: "Engine initializing...",
			Outlook:          "Neutral",
		}
	}
}
