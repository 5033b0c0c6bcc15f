package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHTTPMiddleware_LabelsByRoute(t *testing.T) {
	reg := NewRegistry()
	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/analyze/ZZZZ" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	for path, want := range map[string]int{
		"/api/analyze/AAPL": http.StatusOK,
		"/api/analyze/MSFT": http.StatusOK,
		"/api/analyze/ZZZZ": http.StatusNotFound,
	} {
		if got := serve(wrapped, "GET", path).Code; got != want {
			t.Errorf("%s: expected %d, got %d", path, want, got)
		}
	}

	route := "/api/analyze/{ticker}"
	if got := testutil.ToFloat64(reg.httpRequestsTotal.WithLabelValues("GET", route, "2xx")); got != 2 {
		t.Errorf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(reg.httpRequestsTotal.WithLabelValues("GET", route, "4xx")); got != 1 {
		t.Errorf("expected 1 client error, got %v", got)
	}
	if n := testutil.CollectAndCount(reg.httpRequestDuration); n != 1 {
		t.Errorf("expected one duration series, got %d", n)
	}
}

func TestHTTPMiddleware_TracksInFlight(t *testing.T) {
	reg := NewRegistry()

	var during float64
	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(reg.httpRequestsInFlight)
	}))

	serve(wrapped, "GET", "/api/health")

	if during != 1 {
		t.Errorf("expected 1 in flight during request, got %v", during)
	}
	if got := testutil.ToFloat64(reg.httpRequestsInFlight); got != 0 {
		t.Errorf("expected 0 in flight after request, got %v", got)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/api/analyze/AAPL":        "/api/analyze/{ticker}",
		"/api/history/RELIANCE.NS": "/api/history/{ticker}",
		"/api/history/AAPL/4f1c":   "/api/history/{ticker}/{id}",
		"/api/archive/MSFT":        "/api/archive/{ticker}",
		"/api/analyze/":            "/api/analyze/",
		"/api/health":              "/api/health",
	}
	for in, want := range tests {
		if got := routeLabel(in); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
