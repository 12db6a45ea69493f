// Package kpi derives ratio metrics from raw delivery counters. Every
// division goes through SafeDivide so a zero denominator never yields an
// error or an infinite value.
package kpi

import (
	"errors"
	"fmt"
	"math"

	"github.com/patrickwarner/adinsights/internal/models"
)

// ErrLengthMismatch is returned when operands cannot be aligned.
var ErrLengthMismatch = errors.New("operand length mismatch")

// Div returns n/d, or fill when d is exactly zero. NaN operands propagate.
func Div(n, d, fill float64) float64 {
	if d == 0 {
		return fill
	}
	return n / d
}

// SafeDivide divides num by den element-wise. A length-1 operand is broadcast
// against the other one, which covers dividing a column by a single row of
// aggregate totals.
func SafeDivide(num, den []float64, fill float64) ([]float64, error) {
	n := len(num)
	switch {
	case len(num) == len(den):
	case len(num) == 1:
		n = len(den)
	case len(den) == 1:
	default:
		return nil, fmt.Errorf("safe divide %d by %d: %w", len(num), len(den), ErrLengthMismatch)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = Div(at(num, i), at(den, i), fill)
	}
	return out, nil
}

func at(s []float64, i int) float64 {
	if len(s) == 1 {
		return s[0]
	}
	return s[i]
}

// Derive computes every ratio for v. CPA uses NaN as its fill so spend with
// no orders is distinguishable from no spend at all. The add-to-cart ratios
// are only set when the source schema has the column.
func Derive(v models.Volume, hasATC bool) models.DerivedMetrics {
	imps := float64(v.Impressions)
	clicks := float64(v.Clicks)
	orders := float64(v.Orders)

	m := models.DerivedMetrics{
		CTR:  Div(clicks, imps, 0),
		CVR:  Div(orders, clicks, 0),
		ROAS: Div(v.Revenue, v.Cost, 0),
		CPC:  Div(v.Cost, clicks, 0),
		CPA:  models.Float(Div(v.Cost, orders, math.NaN())),
		ACOS: Div(v.Cost, v.Revenue, 0),
		RPC:  Div(v.Revenue, clicks, 0),
	}
	if hasATC {
		atc := float64(v.AddToCart)
		rate := Div(atc, clicks, 0)
		checkout := Div(orders, atc, 0)
		m.ATCRate = &rate
		m.CheckoutRate = &checkout
	}
	return m
}

// DeriveRecords returns metrics for each record of ds, index-aligned.
func DeriveRecords(ds models.Dataset) []models.DerivedMetrics {
	out := make([]models.DerivedMetrics, len(ds.Records))
	for i, r := range ds.Records {
		out[i] = Derive(r.Volume, ds.HasAddToCart)
	}
	return out
}
