package models

import (
	"encoding/json"
	"math"
)

// Float is a float64 that may be undefined. NaN and ±Inf encode as JSON null,
// and null decodes back to NaN.
type Float float64

// NaN returns an undefined Float.
func NaN() Float { return Float(math.NaN()) }

// Valid reports whether f holds a finite value.
func (f Float) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Or returns f when valid and def otherwise.
func (f Float) Or(def float64) float64 {
	if f.Valid() {
		return float64(f)
	}
	return def
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = NaN()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// LessUndefinedLast orders a before b with undefined values after every
// defined one. With desc set, defined values are compared descending.
func LessUndefinedLast(a, b Float, desc bool) bool {
	av, bv := a.Valid(), b.Valid()
	switch {
	case av && bv:
		if desc {
			return a > b
		}
		return a < b
	case av:
		return true
	default:
		return false
	}
}
