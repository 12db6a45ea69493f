package segmentation

import (
	"math"
	"sort"

	"github.com/patrickwarner/adinsights/internal/models"
)

const (
	negateROASFactor  = 0.75 // ROAS below this share of target is "far below"
	negateCPAFactor   = 1.3  // CPA above this multiple of target is "well above"
	negateROASCeiling = 1.2  // spend below this ROAS counts toward negate priority
)

// NegateQueueSize is the number of keywords surfaced in the negate queue.
const NegateQueueSize = 20

// KeywordAssessment is a keyword aggregate with its negate evaluation.
type KeywordAssessment struct {
	models.AggregateRow
	// Efficiency is roas*cvr/cpc, undefined when CPC is zero.
	Efficiency     models.Float        `json:"efficiency"`
	Negate         bool                `json:"negate_flag"`
	NegateReason   models.NegateReason `json:"negate_reason"`
	NegatePriority float64             `json:"negate_priority"`
}

// NegateReasonFor returns the first matching reason. It is defined for every
// row, including rows that are not negate candidates.
func NegateReasonFor(r models.AggregateRow, th models.TargetThresholds) models.NegateReason {
	switch {
	case r.Orders == 0:
		return models.ReasonNoOrders
	case lowROAS(r, th):
		return models.ReasonLowROAS
	case highCPA(r, th):
		return models.ReasonHighCPA
	default:
		return models.ReasonMixedDrift
	}
}

// IsNegateCandidate reports whether spend on r is large enough and its
// economics weak enough to exclude the keyword.
func IsNegateCandidate(r models.AggregateRow, th models.TargetThresholds) bool {
	return r.Cost >= th.MinSpend && (r.Orders == 0 || lowROAS(r, th) || highCPA(r, th))
}

// NegatePriority scores spend exposure plus CPA overshoot. An undefined term
// contributes nothing.
func NegatePriority(r models.AggregateRow, th models.TargetThresholds) float64 {
	return nonNegative(r.Cost*(negateROASCeiling-r.ROAS)) +
		nonNegative(float64(r.CPA)-th.TargetCPA)
}

// ROAS is only meaningful with spend; without it the row has no ROAS to
// compare.
func lowROAS(r models.AggregateRow, th models.TargetThresholds) bool {
	return r.Cost > 0 && r.ROAS < th.TargetROAS*negateROASFactor
}

func highCPA(r models.AggregateRow, th models.TargetThresholds) bool {
	return r.CPA.Valid() && float64(r.CPA) > th.TargetCPA*negateCPAFactor
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func keywordEfficiency(m models.DerivedMetrics) models.Float {
	if m.CPC == 0 {
		return models.NaN()
	}
	return models.Float(m.ROAS * m.CVR / m.CPC)
}

// EvaluateKeywords runs the negate rule over keyword aggregates.
func EvaluateKeywords(rows []models.AggregateRow, th models.TargetThresholds) ([]KeywordAssessment, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	out := make([]KeywordAssessment, len(rows))
	for i, r := range rows {
		out[i] = KeywordAssessment{
			AggregateRow:   r,
			Efficiency:     keywordEfficiency(r.DerivedMetrics),
			Negate:         IsNegateCandidate(r, th),
			NegateReason:   NegateReasonFor(r, th),
			NegatePriority: NegatePriority(r, th),
		}
	}
	return out, nil
}

// NegateQueue returns the negate candidates ordered by priority then cost,
// both descending, truncated to limit (no limit when limit <= 0).
func NegateQueue(kws []KeywordAssessment, limit int) []KeywordAssessment {
	queue := make([]KeywordAssessment, 0)
	for _, k := range kws {
		if k.Negate {
			queue = append(queue, k)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].NegatePriority != queue[j].NegatePriority {
			return queue[i].NegatePriority > queue[j].NegatePriority
		}
		return queue[i].Cost > queue[j].Cost
	})
	if limit > 0 && len(queue) > limit {
		queue = queue[:limit]
	}
	return queue
}
