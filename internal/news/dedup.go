package news

import (
	"strings"
	"unicode"

	"github.com/newthinker/marketmind/internal/core"
)

// keyTokens is the number of leading words compared when matching titles.
const keyTokens = 10

// NormalizeKey reduces a title to its duplicate-detection key: case-folded,
// punctuation removed, limited to the first ten words.
func NormalizeKey(title string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return r
		}
		return -1
	}, strings.ToLower(title))

	words := strings.Fields(stripped)
	if len(words) > keyTokens {
		words = words[:keyTokens]
	}
	return strings.Join(words, " ")
}

// Dedup drops headlines whose normalized title was already seen, keeping
// the first occurrence.
func Dedup(headlines []core.Headline) []core.Headline {
	seen := make(map[string]struct{}, len(headlines))
	out := make([]core.Headline, 0, len(headlines))
	for _, h := range headlines {
		key := NormalizeKey(h.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}
