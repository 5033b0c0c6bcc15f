package collector

import (
	"context"

	"github.com/newthinker/marketmind/internal/core"
)

// PriceSource supplies OHLCV bars for a ticker.
//
// period is a lookback such as "7d", "1mo" or "1y"; interval is a sampling
// interval such as "30m" or "1d". Implementations return bars in ascending
// time order, or an error when the ticker has no data.
type PriceSource interface {
	Name() string
	FetchBars(ctx context.Context, ticker, period, interval string) ([]core.Bar, error)
}
