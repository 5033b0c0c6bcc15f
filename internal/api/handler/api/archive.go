// internal/api/handler/api/archive.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/newthinker/marketmind/internal/api/response"
	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/engine"
)

const defaultArchiveLimit = 10

// ArchiveReader loads full results from cold storage.
type ArchiveReader interface {
	Archived(ctx context.Context, ticker string, day time.Time, limit int) ([]*engine.SignalResult, error)
}

// ArchiveHandler serves archived results.
type ArchiveHandler struct {
	app ArchiveReader
	now func() time.Time
}

// NewArchiveHandler creates a new archive handler.
func NewArchiveHandler(app ArchiveReader) *ArchiveHandler {
	return &ArchiveHandler{app: app, now: time.Now}
}

// List returns results archived for {ticker} on ?date=YYYY-MM-DD (UTC,
// default today).
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	ticker, err := PathTicker(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	day := h.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			response.FromError(w, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("invalid date %q", raw)))
			return
		}
	}

	limit := defaultArchiveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	results, err := h.app.Archived(r.Context(), ticker, day, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"ticker":  ticker,
		"date":    day.Format(time.DateOnly),
		"results": results,
		"count":   len(results),
	})
}
