// Package sentiment turns news headlines into a scalar sentiment score.
package sentiment

import (
	"math"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/fallback"
)

// Label is a qualitative sentiment bucket.
type Label string

const (
	VeryPositive Label = "Very Positive"
	Positive     Label = "Positive"
	Neutral      Label = "Neutral"
	Negative     Label = "Negative"
	VeryNegative Label = "Very Negative"
)

var explanations = map[Label]string{
	VeryPositive: "Strong positive sentiment detected in recent headlines; market outlook is bullish.",
	Positive:     "Moderately positive news flow suggests cautious optimism.",
	Neutral:      "News sentiment is balanced; no strong directional bias from media.",
	Negative:     "Negative headlines are surfacing, suggesting potential downside pressure.",
	VeryNegative: "Strong negative sentiment dominates; high risk of bearish movement.",
}

// Result is the sentiment of a set of headlines.
type Result struct {
	Score       int    `json:"score"`
	Label       Label  `json:"label"`
	Explanation string `json:"explanation"`
}

// Scorer averages per-headline polarity into a score in [-100, 100].
type Scorer struct {
	analyzer Analyzer
}

// NewScorer creates a scorer using analyzer for per-title polarity.
func NewScorer(analyzer Analyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// Score rates headlines by title. With no headlines the result is a neutral
// zero carrying the no-news explanation.
func (s *Scorer) Score(headlines []core.Headline) Result {
	if len(headlines) == 0 {
		return Result{Score: 0, Label: Neutral, Explanation: fallback.NoNewsExplanation}
	}

	var sum float64
	for _, h := range headlines {
		sum += s.analyzer.Compound(h.Title)
	}
	return FromScore(int(math.RoundToEven(sum / float64(len(headlines)) * 100)))
}

// FromScore labels an already computed score.
func FromScore(score int) Result {
	label := LabelFor(score)
	return Result{Score: score, Label: label, Explanation: explanations[label]}
}

// LabelFor buckets a score. Lower bounds of the positive buckets and upper
// bounds of the negative buckets are inclusive.
func LabelFor(score int) Label {
	switch {
	case score >= 40:
		return VeryPositive
	case score >= 10:
		return Positive
	case score > -10:
		return Neutral
	case score > -40:
		return Negative
	default:
		return VeryNegative
	}
}
