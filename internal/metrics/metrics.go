package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	synthTotal      *prometheus.CounterVec
	synthDuration   prometheus.Histogram
	newsFetches     *prometheus.CounterVec
	priceFallbacks  *prometheus.CounterVec
	enrichments     *prometheus.CounterVec
	sentimentScores prometheus.Histogram
	watchRuns       *prometheus.CounterVec
	watchSentiment  *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.synthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketmind_synth_total",
			Help: "Total number of signals synthesized, by series mode",
		},
		[]string{"mode"},
	)
	r.synthDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketmind_synth_duration_seconds",
			Help:    "Signal synthesis duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
	)
	r.newsFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketmind_news_fetch_total",
			Help: "News source fetches by source and outcome",
		},
		[]string{"source", "status"},
	)
	r.priceFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketmind_price_fallback_total",
			Help: "Requests served from demo data, by reason",
		},
		[]string{"reason"},
	)
	r.enrichments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketmind_enrichment_total",
			Help: "LLM enrichment attempts by outcome",
		},
		[]string{"status"},
	)
	r.sentimentScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketmind_sentiment_score",
			Help:    "Distribution of sentiment scores across all syntheses",
			Buckets: prometheus.LinearBuckets(-80, 20, 9),
		},
	)
	// Labelled by ticker, so only watchlist runs may write it.
	r.watchSentiment = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketmind_watch_sentiment_score",
			Help: "Latest sentiment score per watchlist ticker",
		},
		[]string{"ticker"},
	)
	r.watchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketmind_watch_runs_total",
			Help: "Scheduled watchlist syntheses by outcome",
		},
		[]string{"status"},
	)

	reg.MustRegister(r.synthTotal)
	reg.MustRegister(r.synthDuration)
	reg.MustRegister(r.newsFetches)
	reg.MustRegister(r.priceFallbacks)
	reg.MustRegister(r.enrichments)
	reg.MustRegister(r.sentimentScores)
	reg.MustRegister(r.watchRuns)
	reg.MustRegister(r.watchSentiment)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSynthesis records a completed synthesis.
func (r *Registry) RecordSynthesis(mode string, d time.Duration) {
	r.synthTotal.WithLabelValues(mode).Inc()
	r.synthDuration.Observe(d.Seconds())
}

// RecordNewsFetch records the outcome of one news source query.
func (r *Registry) RecordNewsFetch(source, status string) {
	r.newsFetches.WithLabelValues(source, status).Inc()
}

// RecordPriceFallback records a switch to demo data.
func (r *Registry) RecordPriceFallback(reason string) {
	r.priceFallbacks.WithLabelValues(reason).Inc()
}

// RecordEnrichment records the outcome of an LLM enrichment.
func (r *Registry) RecordEnrichment(status string) {
	r.enrichments.WithLabelValues(status).Inc()
}

// RecordSentiment observes one synthesized sentiment score.
func (r *Registry) RecordSentiment(score int) {
	r.sentimentScores.Observe(float64(score))
}

// RecordWatchSentiment sets the latest score for a watchlist ticker.
func (r *Registry) RecordWatchSentiment(ticker string, score int) {
	r.watchSentiment.WithLabelValues(ticker).Set(float64(score))
}

// RecordWatchRun records one scheduled synthesis.
func (r *Registry) RecordWatchRun(status string) {
	r.watchRuns.WithLabelValues(status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
