package series

import "github.com/newthinker/marketmind/internal/core"

// Window is the concrete lookback and sampling interval behind a Timeframe.
type Window struct {
	Period   string `json:"period"`
	Interval string `json:"interval"`
}

var windows = map[core.Timeframe]Window{
	core.TimeframeShort:  {Period: "7d", Interval: "30m"},
	core.TimeframeMedium: {Period: "1mo", Interval: "1d"},
	core.TimeframeLong:   {Period: "1y", Interval: "1d"},
}

// WindowFor returns the window for tf; unknown timeframes map to medium.
func WindowFor(tf core.Timeframe) Window {
	if w, ok := windows[tf]; ok {
		return w
	}
	return windows[core.TimeframeMedium]
}
