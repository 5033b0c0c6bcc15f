package series

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/newthinker/marketmind/internal/core"
)

// DemoBars is the number of bars the demo synthesizer produces.
const DemoBars = 60

// DemoSynthesizer generates a plausible random-walk OHLCV series. It exists
// so the indicator and prediction stages always receive well-formed input,
// even with no connectivity; its values carry no forecasting meaning.
type DemoSynthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewDemoSynthesizer creates a synthesizer. A nil rng is seeded from the
// clock; a nil now uses time.Now.
func NewDemoSynthesizer(rng *rand.Rand, now func() time.Time) *DemoSynthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &DemoSynthesizer{rng: rng, now: now}
}

// Generate returns DemoBars consecutive daily bars ending today.
func (d *DemoSynthesizer) Generate() []core.Bar {
	d.mu.Lock()
	defer d.mu.Unlock()

	end := d.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(DemoBars - 1))

	price := 150.0 + d.uniform(-20, 20)
	bars := make([]core.Bar, 0, DemoBars)

	for i := 0; i < DemoBars; i++ {
		price += d.uniform(-2, 2)

		low := round2(price - d.uniform(0.5, 1.5))
		high := round2(price + d.uniform(0.5, 1.5))
		open := round2((low+high)/2 + d.uniform(-0.5, 0.5))

		bars = append(bars, core.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   math.Min(math.Max(open, low), high),
			High:   high,
			Low:    low,
			Close:  round2(price),
			Volume: int64(d.uniform(1_000_000, 5_000_000)),
		})
	}

	return bars
}

func (d *DemoSynthesizer) uniform(lo, hi float64) float64 {
	return lo + d.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
