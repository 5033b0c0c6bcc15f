package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/newthinker/marketmind/internal/core"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; marketmind/1.0)"

// Feed endpoints.
const (
	GoogleBaseURL = "https://news.google.com/rss/search"
	YahooBaseURL  = "https://finance.yahoo.com/rss/headline"
	BingBaseURL   = "https://www.bing.com/news/search"
)

// RSSSource fetches headlines from an RSS search endpoint.
type RSSSource struct {
	name          string
	baseURL       string
	limit         int
	defaultSource string
	splitTitle    bool
	query         func(baseURL, ticker string) string

	client    *http.Client
	userAgent string
	now       func() time.Time
}

// Option configures an RSSSource.
type Option func(*RSSSource)

// WithBaseURL points the source at a different endpoint.
func WithBaseURL(u string) Option {
	return func(s *RSSSource) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *RSSSource) { s.client = c }
}

// WithUserAgent sets the User-Agent header sent with feed requests.
func WithUserAgent(ua string) Option {
	return func(s *RSSSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithLimit caps the number of items taken from one feed response.
func WithLimit(n int) Option {
	return func(s *RSSSource) { s.limit = n }
}

// WithClock replaces the clock used for unparseable publish dates.
func WithClock(now func() time.Time) Option {
	return func(s *RSSSource) { s.now = now }
}

func newRSSSource(name, baseURL, defaultSource string, limit int, query func(string, string) string, opts []Option) *RSSSource {
	s := &RSSSource{
		name:          name,
		baseURL:       baseURL,
		limit:         limit,
		defaultSource: defaultSource,
		query:         query,
		client:        &http.Client{Timeout: 10 * time.Second},
		userAgent:     defaultUserAgent,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGoogle creates a Google News search source. Google appends the
// publisher to each title as "Title - Publisher".
func NewGoogle(opts ...Option) *RSSSource {
	s := newRSSSource("google", GoogleBaseURL, "Google News", 6, func(base, ticker string) string {
		q := url.Values{}
		q.Set("q", CleanTicker(ticker)+" stock market news")
		q.Set("hl", "en-US")
		q.Set("gl", "US")
		q.Set("ceid", "US:en")
		return base + "?" + q.Encode()
	}, opts)
	s.splitTitle = true
	return s
}

// NewYahoo creates a Yahoo Finance headline source. Yahoo is queried with
// the raw ticker.
func NewYahoo(opts ...Option) *RSSSource {
	return newRSSSource("yahoo", YahooBaseURL, "Yahoo Finance", 4, func(base, ticker string) string {
		q := url.Values{}
		q.Set("s", ticker)
		return base + "?" + q.Encode()
	}, opts)
}

// NewBing creates a Bing News search source.
func NewBing(opts ...Option) *RSSSource {
	return newRSSSource("bing", BingBaseURL, "Bing News", 4, func(base, ticker string) string {
		q := url.Values{}
		q.Set("q", CleanTicker(ticker)+" stock market")
		q.Set("format", "rss")
		return base + "?" + q.Encode()
	}, opts)
}

// NewSource creates a source by name.
func NewSource(name string, opts ...Option) (*RSSSource, error) {
	switch name {
	case "google":
		return NewGoogle(opts...), nil
	case "yahoo":
		return NewYahoo(opts...), nil
	case "bing":
		return NewBing(opts...), nil
	default:
		return nil, fmt.Errorf("unknown news source: %s", name)
	}
}

func (s *RSSSource) Name() string {
	return s.name
}

// URL returns the feed URL queried for ticker.
func (s *RSSSource) URL(ticker string) string {
	return s.query(s.baseURL, ticker)
}

// Search fetches the feed for ticker and converts up to limit items.
func (s *RSSSource) Search(ctx context.Context, ticker string) ([]core.Headline, error) {
	parser := gofeed.NewParser()
	parser.Client = s.client
	parser.UserAgent = s.userAgent

	feed, err := parser.ParseURLWithContext(s.URL(ticker), ctx)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFetchFailed, fmt.Errorf("%s: %w", s.name, err))
	}

	now := s.now()
	var headlines []core.Headline
	for _, item := range feed.Items {
		if s.limit > 0 && len(headlines) >= s.limit {
			break
		}
		if item == nil {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		source := s.defaultSource
		if s.splitTitle {
			if i := strings.LastIndex(title, " - "); i >= 0 {
				source = strings.TrimSpace(title[i+3:])
				title = strings.TrimSpace(title[:i])
			}
		} else if publisher := extensionSource(item.Extensions); publisher != "" {
			source = publisher
		}

		published := ParseTimestamp(item.Published, now)
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		headlines = append(headlines, core.Headline{
			Title:       title,
			Link:        item.Link,
			Source:      source,
			PublishedAt: published,
		})
	}
	return headlines, nil
}

// extensionSource returns the publisher carried in a namespaced <Source>
// element, as Bing News emits it.
func extensionSource(exts ext.Extensions) string {
	for _, elems := range exts {
		for name, values := range elems {
			if !strings.EqualFold(name, "source") {
				continue
			}
			for _, v := range values {
				if s := strings.TrimSpace(v.Value); s != "" {
					return s
				}
			}
		}
	}
	return ""
}
