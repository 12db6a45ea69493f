package segmentation

import (
	"math"

	"github.com/patrickwarner/adinsights/internal/models"
)

// Efficiency score weights. CVR is a fraction, so 35 equals 0.35 per
// percentage point.
const (
	effROASWeight = 0.55
	effCVRWeight  = 35.0
	effCPCWeight  = 0.1
)

// CampaignSegment is a campaign aggregate placed in the volume x efficiency
// matrix.
type CampaignSegment struct {
	models.AggregateRow
	EffScore float64        `json:"eff_score"`
	Segment  models.Segment `json:"segment"`
	Action   string         `json:"action"`
	// Priority is the revenue upside if the campaign reached target ROAS.
	Priority float64 `json:"priority"`
}

// EffScore blends ROAS, CVR and CPC into a single efficiency number.
func EffScore(m models.DerivedMetrics) float64 {
	return effROASWeight*m.ROAS + effCVRWeight*m.CVR - effCPCWeight*m.CPC
}

// SegmentFor applies the quadrant split.
func SegmentFor(cost, eff float64, st SegmentStats) models.Segment {
	highVolume := cost >= st.CostMedian
	highEff := eff >= st.EffScoreMedian
	switch {
	case highVolume && highEff:
		return models.SegmentScale
	case highVolume:
		return models.SegmentOptimize
	case highEff:
		return models.SegmentTest
	default:
		return models.SegmentPause
	}
}

// SegmentCampaigns segments campaign aggregates. Cut lines are the medians of
// cost and efficiency score over rows.
func SegmentCampaigns(rows []models.AggregateRow, th models.TargetThresholds) ([]CampaignSegment, SegmentStats, error) {
	if err := th.Validate(); err != nil {
		return nil, SegmentStats{}, err
	}

	scores := make([]float64, len(rows))
	for i, r := range rows {
		scores[i] = EffScore(r.DerivedMetrics)
	}
	st := SegmentStats{
		CostMedian:     Median(column(rows, func(r models.AggregateRow) float64 { return r.Cost })),
		EffScoreMedian: Median(scores),
	}

	out := make([]CampaignSegment, len(rows))
	for i, r := range rows {
		seg := SegmentFor(r.Cost, scores[i], st)
		out[i] = CampaignSegment{
			AggregateRow: r,
			EffScore:     scores[i],
			Segment:      seg,
			Action:       seg.Action(),
			Priority:     math.Max(0, r.Cost*(th.TargetROAS-r.ROAS)),
		}
	}
	return out, st, nil
}
