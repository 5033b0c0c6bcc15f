package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/marketmind/internal/cache"
	"github.com/newthinker/marketmind/internal/core"
	"go.uber.org/zap"
)

// CachedFetcher wraps a Fetcher with a TTL cache keyed by ticker and limit.
// Empty results are not cached.
type CachedFetcher struct {
	next   Fetcher
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewCachedFetcher creates a caching decorator around next.
func NewCachedFetcher(next Fetcher, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.Named("news_cache"),
		now:    time.Now,
	}
}

func (f *CachedFetcher) Fetch(ctx context.Context, ticker string, limit int) []core.Headline {
	key := fmt.Sprintf("news:%s:%d", strings.ToUpper(ticker), limit)

	data, err := f.cache.Get(ctx, key)
	if err == nil {
		var headlines []core.Headline
		if err := json.Unmarshal(data, &headlines); err == nil {
			Relabel(headlines, f.now())
			return headlines
		}
		f.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		f.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	headlines := f.next.Fetch(ctx, ticker, limit)
	if len(headlines) == 0 {
		return headlines
	}

	data, err = json.Marshal(headlines)
	if err != nil {
		return headlines
	}
	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return headlines
}
