// internal/api/handler/api/health.go
package api

import (
	"net/http"
	"time"

	"github.com/newthinker/marketmind/internal/api/response"
)

// StatsSource reports component statistics.
type StatsSource interface {
	GetStats() map[string]any
}

// HealthHandler reports liveness.
type HealthHandler struct {
	version string
	started time.Time
	sources map[string]StatsSource
}

// NewHealthHandler creates a new health handler. Nil sources are ignored.
func NewHealthHandler(version string, sources map[string]StatsSource) *HealthHandler {
	h := &HealthHandler{version: version, started: time.Now(), sources: map[string]StatsSource{}}
	for name, src := range sources {
		if src != nil {
			h.sources[name] = src
		}
	}
	return h
}

// Get returns service status.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	for name, src := range h.sources {
		body[name] = src.GetStats()
	}
	response.JSON(w, http.StatusOK, body)
}
