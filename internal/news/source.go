// Package news collects recent headlines for a ticker from several
// independent feeds and reconciles them into one deduplicated list.
package news

import (
	"context"
	"strings"

	"github.com/newthinker/marketmind/internal/core"
)

// Source searches one news feed for headlines about a ticker.
type Source interface {
	Name() string
	Search(ctx context.Context, ticker string) ([]core.Headline, error)
}

// CleanTicker turns a ticker into a search phrase: Indian exchange suffixes
// are removed and any remaining dots become spaces.
func CleanTicker(ticker string) string {
	t := strings.ReplaceAll(ticker, ".NS", "")
	t = strings.ReplaceAll(t, ".BO", "")
	return strings.ReplaceAll(t, ".", " ")
}
