package indicator

import (
	"encoding/json"
	"math"
)

// Reading is an indicator value that may be undefined because the series
// does not yet have enough history. An undefined Reading is distinct from a
// genuine zero and marshals to JSON null.
type Reading struct {
	Value   float64
	Defined bool
}

// ReadingOf wraps v, treating NaN and infinities as undefined.
func ReadingOf(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{Value: v, Defined: true}
}

// Or returns the value, or fallback when undefined.
func (r Reading) Or(fallback float64) float64 {
	if !r.Defined {
		return fallback
	}
	return r.Value
}

// Round returns the reading rounded to the given number of decimals.
func (r Reading) Round(decimals int) Reading {
	if !r.Defined {
		return r
	}
	p := math.Pow(10, float64(decimals))
	return Reading{Value: math.RoundToEven(r.Value*p) / p, Defined: true}
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Reading{Value: v, Defined: true}
	return nil
}
