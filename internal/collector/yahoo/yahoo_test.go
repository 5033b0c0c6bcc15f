package yahoo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/newthinker/marketmind/internal/collector"
	"github.com/newthinker/marketmind/internal/core"
)

func TestYahoo_ImplementsPriceSource(t *testing.T) {
	var _ collector.PriceSource = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New()
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"reliance.ns", "RELIANCE.NS"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"0700.HK", "0700.HK"},
	}

	y := New()
	for _, tc := range tests {
		got := y.toYahooSymbol(tc.input)
		if got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "BRK-B", "RELIANCE.NS", "^GSPC", "0700.HK"}
	for _, s := range valid {
		if err := validateSymbol(s); err != nil {
			t.Errorf("validateSymbol(%q): unexpected error %v", s, err)
		}
	}
	invalid := []string{"", "AAPL; DROP", "../etc", "A.B.C"}
	for _, s := range invalid {
		if err := validateSymbol(s); err == nil {
			t.Errorf("validateSymbol(%q): expected error", s)
		}
	}
}

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1700000000, 1700086400, 1700172800],
      "indicators": {"quote": [{
        "open":   [10.0, null, 12.0],
        "high":   [11.0, 12.5, 13.0],
        "low":    [9.5, 10.5, 11.5],
        "close":  [10.5, 12.0, 12.5],
        "volume": [1000, 2000, null]
      }]}
    }],
    "error": null
  }
}`

const adjustedFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1700000000, 1700086400, 1700172800],
      "indicators": {
        "quote": [{
          "open":   [20.0, 21.0, 22.0],
          "high":   [22.0, 23.0, 24.0],
          "low":    [19.0, 20.0, 21.0],
          "close":  [21.0, 22.0, 23.0],
          "volume": [1000, 2000, 3000]
        }],
        "adjclose": [{"adjclose": [10.5, null, 23.0]}]
      }
    }],
    "error": null
  }
}`

func fixtureServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
}

func TestYahoo_FetchBars(t *testing.T) {
	var gotPath, gotRange, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	bars, err := y.FetchBars(context.Background(), "600519.SH", "1mo", "1d")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath != "/600519.SS" {
		t.Errorf("expected path /600519.SS, got %s", gotPath)
	}
	if gotRange != "1mo" || gotInterval != "1d" {
		t.Errorf("expected 1mo/1d, got %s/%s", gotRange, gotInterval)
	}

	// The bar with a null open is skipped
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 10.5 || bars[0].Volume != 1000 {
		t.Errorf("unexpected first bar %+v", bars[0])
	}
	if bars[1].Close != 12.5 || bars[1].Volume != 0 {
		t.Errorf("unexpected second bar %+v", bars[1])
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("expected bars in time order")
	}
}

func TestYahoo_FetchBars_AdjustedClose(t *testing.T) {
	srv := fixtureServer(adjustedFixture)
	defer srv.Close()

	bars, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "AAPL", "1y", "1d")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}

	// Halved by a 2:1 split: every price field scales with adjclose/close
	first := bars[0]
	if first.Close != 10.5 {
		t.Errorf("expected adjusted close 10.5, got %v", first.Close)
	}
	for name, got := range map[string]float64{"open": first.Open, "high": first.High, "low": first.Low} {
		want := map[string]float64{"open": 10, "high": 11, "low": 9.5}[name]
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
	if !first.IsValid() {
		t.Errorf("expected adjusted bar to stay consistent, got %+v", first)
	}

	// A null adjclose keeps the raw close
	if bars[1].Close != 22 || bars[1].Open != 21 {
		t.Errorf("expected raw prices without adjclose, got %+v", bars[1])
	}
	if bars[2].Close != 23 {
		t.Errorf("expected unchanged close when adjclose equals close, got %v", bars[2].Close)
	}
}

func TestYahoo_FetchBars_ChartError(t *testing.T) {
	srv := fixtureServer(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "XYZ", "1mo", "1d")
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Errorf("expected delisted error, got %v", err)
	}
}

func TestYahoo_FetchBars_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := New(WithBaseURL(srv.URL)).FetchBars(context.Background(), "AAPL", "1mo", "1d"); err == nil {
		t.Error("expected error for 429")
	}
}

func TestYahoo_FetchBars_InvalidSymbol(t *testing.T) {
	_, err := New().FetchBars(context.Background(), "AAPL; DROP", "1mo", "1d")
	if !errors.Is(err, core.ErrSymbolInvalid) {
		t.Errorf("expected ErrSymbolInvalid, got %v", err)
	}
}
