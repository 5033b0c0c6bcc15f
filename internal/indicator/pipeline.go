package indicator

import (
	"math"
	"time"

	"github.com/newthinker/marketmind/internal/core"
)

// Window lengths used by the pipeline.
const (
	FastSMAPeriod     = 20
	SlowSMAPeriod     = 50
	RSIPeriod         = 14
	MACDFastSpan      = 12
	MACDSlowSpan      = 26
	MACDSignalSpan    = 9
	BollingerPeriod   = 20
	BollingerWidth    = 2.0
	VolatilityPeriod  = 14
	MomentumLag       = 5
	SupportResistance = 60
)

// Frame is a bar sequence annotated with aligned indicator series.
type Frame struct {
	Bars []core.Bar

	SMA20      []float64
	SMA50      []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	BBMiddle   []float64
	BBUpper    []float64
	BBLower    []float64
	Returns    []float64
	Volatility []float64
	Momentum   []float64
}

// Compute runs the indicator pipeline over bars, which must be in
// ascending time order.
func Compute(bars []core.Bar) *Frame {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	f := &Frame{Bars: bars}

	f.SMA20 = SMA(closes, FastSMAPeriod)
	f.SMA50 = SMA(closes, SlowSMAPeriod)
	f.RSI = RSI(closes, RSIPeriod)

	fast := EMA(closes, MACDFastSpan)
	slow := EMA(closes, MACDSlowSpan)
	f.MACD = make([]float64, len(closes))
	for i := range closes {
		f.MACD[i] = fast[i] - slow[i]
	}
	f.MACDSignal = EMA(f.MACD, MACDSignalSpan)
	f.MACDHist = make([]float64, len(closes))
	for i := range closes {
		f.MACDHist[i] = f.MACD[i] - f.MACDSignal[i]
	}

	f.BBMiddle = SMA(closes, BollingerPeriod)
	std := StdDev(closes, BollingerPeriod)
	f.BBUpper = make([]float64, len(closes))
	f.BBLower = make([]float64, len(closes))
	for i := range closes {
		f.BBUpper[i] = f.BBMiddle[i] + BollingerWidth*std[i]
		f.BBLower[i] = f.BBMiddle[i] - BollingerWidth*std[i]
	}

	f.Returns = PctChange(closes)
	f.Volatility = StdDev(f.Returns, VolatilityPeriod)
	f.Momentum = Diff(closes, MomentumLag)

	return f
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int {
	return len(f.Bars)
}

// Snapshot holds the indicator values at one point of a frame.
type Snapshot struct {
	Time       time.Time
	Price      float64
	Volume     int64
	SMA20      Reading
	SMA50      Reading
	RSI        Reading
	MACD       Reading
	MACDSignal Reading
	MACDHist   Reading
	BBUpper    Reading
	BBMiddle   Reading
	BBLower    Reading
	Return     Reading
	Volatility Reading
	Momentum   Reading
	Support    float64
	Resistance float64
}

// Latest returns the snapshot at the last bar. ok is false for an empty frame.
func (f *Frame) Latest() (s Snapshot, ok bool) {
	if f.Len() == 0 {
		return Snapshot{}, false
	}
	return f.At(f.Len() - 1), true
}

// At returns the snapshot at bar i.
func (f *Frame) At(i int) Snapshot {
	b := f.Bars[i]

	from := i + 1 - SupportResistance
	if from < 0 {
		from = 0
	}
	support, resistance := math.Inf(1), math.Inf(-1)
	for _, w := range f.Bars[from : i+1] {
		support = math.Min(support, w.Low)
		resistance = math.Max(resistance, w.High)
	}

	return Snapshot{
		Time:       b.Time,
		Price:      b.Close,
		Volume:     b.Volume,
		SMA20:      ReadingOf(f.SMA20[i]),
		SMA50:      ReadingOf(f.SMA50[i]),
		RSI:        ReadingOf(f.RSI[i]),
		MACD:       ReadingOf(f.MACD[i]),
		MACDSignal: ReadingOf(f.MACDSignal[i]),
		MACDHist:   ReadingOf(f.MACDHist[i]),
		BBUpper:    ReadingOf(f.BBUpper[i]),
		BBMiddle:   ReadingOf(f.BBMiddle[i]),
		BBLower:    ReadingOf(f.BBLower[i]),
		Return:     ReadingOf(f.Returns[i]),
		Volatility: ReadingOf(f.Volatility[i]),
		Momentum:   ReadingOf(f.Momentum[i]),
		Support:    support,
		Resistance: resistance,
	}
}
