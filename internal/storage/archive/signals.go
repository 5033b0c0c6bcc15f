// internal/storage/archive/signals.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/engine"
	"go.uber.org/zap"
)

// signalRoot is the top-level directory for archived signal results.
const signalRoot = "signals"

// SignalArchive stores complete synthesis results as JSON documents laid out
// as signals/<TICKER>/<YYYY-MM-DD>/<unix-nanos>.json.
type SignalArchive struct {
	store  Storage
	logger *zap.Logger
}

// NewSignalArchive wraps a storage backend.
func NewSignalArchive(store Storage, logger *zap.Logger) *SignalArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignalArchive{store: store, logger: logger.Named("archive")}
}

// SignalPath returns the archive path for a result generated at t.
func SignalPath(ticker string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%s/%s/%d.json", signalRoot, strings.ToUpper(ticker), t.Format("2006-01-02"), t.UnixNano())
}

// Archive writes res and returns the path it was stored under.
func (a *SignalArchive) Archive(ctx context.Context, res *engine.SignalResult) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("encoding signal result: %w", err)
	}

	path := SignalPath(res.Ticker, res.GeneratedAt)
	if err := a.store.Write(ctx, path, data); err != nil {
		return "", core.WrapError(core.ErrStoreFailed, fmt.Errorf("writing %s: %w", path, err))
	}

	a.logger.Debug("signal archived", zap.String("ticker", res.Ticker), zap.String("path", path))
	return path, nil
}

// Load reads back one archived result.
func (a *SignalArchive) Load(ctx context.Context, path string) (*engine.SignalResult, error) {
	data, err := a.store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	var res engine.SignalResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &res, nil
}

// Paths lists archived result paths for ticker on day, oldest first.
func (a *SignalArchive) Paths(ctx context.Context, ticker string, day time.Time) ([]string, error) {
	prefix := fmt.Sprintf("%s/%s/%s", signalRoot, strings.ToUpper(ticker), day.UTC().Format("2006-01-02"))
	paths, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
