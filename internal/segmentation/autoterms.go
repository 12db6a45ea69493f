package segmentation

import (
	"github.com/patrickwarner/adinsights/internal/aggregate"
	"github.com/patrickwarner/adinsights/internal/models"
)

// TermAssessment is an auto-campaign search term with its suggested next step.
type TermAssessment struct {
	models.AggregateRow
	Suggestion models.TermSuggestion `json:"suggestion"`
	// Impact is cost*(roas-target). Negative values are kept for ranking.
	Impact float64 `json:"impact"`
}

// AutoTerms groups the auto-campaign records of ds by campaign and keyword.
func AutoTerms(ds models.Dataset) ([]models.AggregateRow, error) {
	auto := make([]models.PerformanceRecord, 0, len(ds.Records))
	for _, r := range ds.Records {
		if r.CampaignType == models.CampaignTypeAuto {
			auto = append(auto, r)
		}
	}
	return aggregate.By(ds.WithRecords(auto), models.DimCampaign, models.DimKeyword)
}

// SuggestFor applies the ordered term rules; the first match wins.
func SuggestFor(r models.AggregateRow, st QualityStats, th models.TargetThresholds) models.TermSuggestion {
	enoughSpend := r.Cost >= th.MinSpend
	switch {
	case enoughSpend && r.Orders >= th.MinOrdersPromote && r.ROAS >= th.TargetROAS:
		return models.SuggestPromoteToManual
	case enoughSpend && r.Orders == 0:
		return models.SuggestNegate
	case r.CTR >= st.CTRMedian && r.CVR < st.CVRMedian:
		return models.SuggestFixLanding
	default:
		return models.SuggestKeepRunning
	}
}

// SuggestAutoTerms labels auto-campaign term aggregates (see AutoTerms).
// CTR/CVR medians are taken over these terms only.
func SuggestAutoTerms(terms []models.AggregateRow, th models.TargetThresholds) ([]TermAssessment, QualityStats, error) {
	if err := th.Validate(); err != nil {
		return nil, QualityStats{}, err
	}
	st := NewQualityStats(terms)
	out := make([]TermAssessment, len(terms))
	for i, r := range terms {
		out[i] = TermAssessment{
			AggregateRow: r,
			Suggestion:   SuggestFor(r, st, th),
			Impact:       r.Cost * (r.ROAS - th.TargetROAS),
		}
	}
	return out, st, nil
}
