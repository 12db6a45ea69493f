package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/patrickwarner/adinsights/internal/validation"
)

// ErrInvalidThresholds is returned when targets are missing, negative or not
// finite. Classification is meaningless without sane targets, so callers
// must fail instead of falling back to defaults.
var ErrInvalidThresholds = errors.New("invalid target thresholds")

// TargetThresholds are the operator-supplied targets for one analysis run.
// They are passed by value and never mutated while a view is computed.
type TargetThresholds struct {
	TargetROAS float64 `json:"target_roas" validate:"gt=0"`
	TargetACOS float64 `json:"target_acos" validate:"gt=0"`
	TargetCPA  float64 `json:"target_cpa" validate:"gt=0"`

	// MinSpend gates the keyword negate and auto-term rules.
	MinSpend float64 `json:"min_spend" validate:"gte=0"`
	// FlagMinSpend gates the per-record NEGATIVE flag.
	FlagMinSpend     float64 `json:"flag_min_spend" validate:"gte=0"`
	MinOrdersPromote int64   `json:"min_orders_promote" validate:"gte=0"`
}

// DefaultThresholds mirrors the dashboard defaults.
func DefaultThresholds() TargetThresholds {
	return TargetThresholds{
		TargetROAS:       2.8,
		TargetACOS:       0.35,
		TargetCPA:        25,
		MinSpend:         60,
		FlagMinSpend:     25,
		MinOrdersPromote: 2,
	}
}

// Validate checks every threshold. The returned error wraps
// ErrInvalidThresholds.
func (t TargetThresholds) Validate() error {
	for name, v := range map[string]float64{
		"target_roas":    t.TargetROAS,
		"target_acos":    t.TargetACOS,
		"target_cpa":     t.TargetCPA,
		"min_spend":      t.MinSpend,
		"flag_min_spend": t.FlagMinSpend,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidThresholds, name)
		}
	}
	if verr := validation.ValidateStruct(&t); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidThresholds, verr.Error())
	}
	return nil
}
