package segmentation

import "github.com/patrickwarner/adinsights/internal/models"

// ChannelQuality is a channel aggregate with its funnel diagnosis.
type ChannelQuality struct {
	models.AggregateRow
	Action models.QualityAction `json:"action"`
}

// QualityAction places one row in the CTR x CVR matrix.
func QualityAction(r models.AggregateRow, st QualityStats) models.QualityAction {
	highCTR := r.CTR >= st.CTRMedian
	highCVR := r.CVR >= st.CVRMedian
	switch {
	case highCTR && highCVR:
		return models.QualityScaleBudget
	case highCTR:
		return models.QualityFixLanding
	case highCVR:
		return models.QualityImproveCreatives
	default:
		return models.QualityRefineTargeting
	}
}

// ClassifyChannelQuality labels channel aggregates against medians taken from
// the same rows.
func ClassifyChannelQuality(rows []models.AggregateRow) ([]ChannelQuality, QualityStats) {
	st := NewQualityStats(rows)
	out := make([]ChannelQuality, len(rows))
	for i, r := range rows {
		out[i] = ChannelQuality{AggregateRow: r, Action: QualityAction(r, st)}
	}
	return out, st
}
