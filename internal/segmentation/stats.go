// Package segmentation turns aggregated performance rows into action labels
// and ranking scores. Every classifier is a pure function of its rows, the
// run thresholds and the statistics computed from those same rows; nothing
// is cached between calls.
package segmentation

import (
	"math"
	"sort"

	"github.com/patrickwarner/adinsights/internal/models"
)

// Median returns the median of values, ignoring NaN. An empty (or all-NaN)
// input yields 0.
func Median(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	n := len(clean)
	if n == 0 {
		return 0
	}
	sort.Float64s(clean)
	if n%2 == 1 {
		return clean[n/2]
	}
	return (clean[n/2-1] + clean[n/2]) / 2
}

func column(rows []models.AggregateRow, f func(models.AggregateRow) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

// QualityStats are the CTR/CVR cut lines for a funnel quality matrix.
type QualityStats struct {
	CTRMedian float64 `json:"ctr_median"`
	CVRMedian float64 `json:"cvr_median"`
}

// NewQualityStats computes medians over rows.
func NewQualityStats(rows []models.AggregateRow) QualityStats {
	return QualityStats{
		CTRMedian: Median(column(rows, func(r models.AggregateRow) float64 { return r.CTR })),
		CVRMedian: Median(column(rows, func(r models.AggregateRow) float64 { return r.CVR })),
	}
}

// SegmentStats are the volume and efficiency cut lines for campaign
// segmentation.
type SegmentStats struct {
	CostMedian     float64 `json:"cost_median"`
	EffScoreMedian float64 `json:"eff_score_median"`
}

// BidStats hold the spend-weighted baseline for channel bid actions.
type BidStats struct {
	TotalCost   float64 `json:"total_cost"`
	TotalClicks int64   `json:"total_clicks"`
	AvgCPC      float64 `json:"avg_cpc"` // total cost / total clicks
}
