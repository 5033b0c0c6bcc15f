package sentiment

import "github.com/jonreiter/govader"

// Analyzer scores the polarity of a piece of text in [-1, 1].
type Analyzer interface {
	Compound(text string) float64
}

// VaderAnalyzer scores text with the VADER lexicon. It is safe for
// concurrent use once constructed.
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer loads the VADER lexicon.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (a *VaderAnalyzer) Compound(text string) float64 {
	return a.sia.PolarityScores(text).Compound
}
