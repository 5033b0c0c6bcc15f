// internal/api/handler/api/history.go
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/newthinker/marketmind/internal/api/response"
	"github.com/newthinker/marketmind/internal/storage/signal"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 500
)

// HistoryReader defines the interface needed from app.App.
type HistoryReader interface {
	History(ctx context.Context, ticker string, limit int) ([]signal.Record, error)
	Record(ctx context.Context, ticker, id string) (*signal.Record, error)
}

// HistoryHandler serves stored score history.
type HistoryHandler struct {
	app HistoryReader
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(app HistoryReader) *HistoryHandler {
	return &HistoryHandler{app: app}
}

// List returns the most recent records for the {ticker} path value.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ticker, err := PathTicker(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	records, err := h.app.History(r.Context(), ticker, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"ticker":  ticker,
		"records": records,
		"count":   len(records),
	})
}

// Get returns the record named by the {id} path value.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticker, err := PathTicker(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	rec, err := h.app.Record(r.Context(), ticker, r.PathValue("id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, rec)
}
