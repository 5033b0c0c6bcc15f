// internal/api/handler/api/analyze.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/newthinker/marketmind/internal/api/response"
	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/engine"
)

// tickerPattern accepts exchange-suffixed and index symbols such as
// RELIANCE.NS, BRK-B and ^GSPC.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,15}$`)

// Analyzer defines the interface needed from app.App.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, tf core.Timeframe, override *int) (*engine.SignalResult, error)
}

// AnalyzeHandler serves on-demand signal synthesis.
type AnalyzeHandler struct {
	app Analyzer
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(app Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{app: app}
}

// Get synthesizes a signal for the {ticker} path value. Query parameters:
// range (1W, 1M, 1Y or short/medium/long) and sentiment, an integer score
// that replaces headline scoring.
func (h *AnalyzeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticker, err := PathTicker(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	q := r.URL.Query()
	tf := core.ParseTimeframe(q.Get("range"))

	var override *int
	if raw := q.Get("sentiment"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FromError(w, core.WrapError(core.ErrInvalidRequest,
				fmt.Errorf("sentiment must be an integer, got %q", raw)))
			return
		}
		override = &n
	}

	res, err := h.app.Analyze(r.Context(), ticker, tf, override)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, res)
}

// PathTicker reads and validates the {ticker} path value.
func PathTicker(r *http.Request) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
	if !tickerPattern.MatchString(ticker) {
		return "", core.WrapError(core.ErrSymbolInvalid, fmt.Errorf("invalid ticker %q", ticker))
	}
	return ticker, nil
}
