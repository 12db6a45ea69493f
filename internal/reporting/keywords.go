package reporting

import (
	"context"
	"sort"

	"github.com/patrickwarner/adinsights/internal/aggregate"
	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/segmentation"
)

// KeywordSummary is the headline row of the keyword page.
type KeywordSummary struct {
	Keywords         int     `json:"keywords"`
	NegateCandidates int     `json:"negate_candidates"`
	AvgCTR           float64 `json:"avg_ctr"`
	AvgCVR           float64 `json:"avg_cvr"`
	AvgCPC           float64 `json:"avg_cpc"`
}

// ChannelBids is the CPC vs ROAS table with its baseline.
type ChannelBids struct {
	TargetROAS    float64                   `json:"target_roas"`
	AvgCPC        float64                   `json:"avg_cpc"`
	ScaleChannels int                       `json:"scale_channels"`
	FixChannels   int                       `json:"fix_channels"`
	Channels      []segmentation.ChannelBid `json:"channels"`
}

// Keywords is the keyword intelligence and auto-mining page.
type Keywords struct {
	Summary     KeywordSummary                   `json:"summary"`
	Keywords    []segmentation.KeywordAssessment `json:"keywords"`
	NegateQueue []segmentation.KeywordAssessment `json:"negate_queue"`
	Bids        ChannelBids                      `json:"channel_bids"`
	AutoActions []segmentation.TermAssessment    `json:"auto_actions"`
	AutoStats   segmentation.QualityStats        `json:"auto_stats"`
}

// Keywords evaluates every keyword for negation, classifies channel bids and
// mines auto-campaign search terms.
func (s *Service) Keywords(ctx context.Context, ds models.Dataset, th models.TargetThresholds) (_ *Keywords, err error) {
	_, done := s.start(ctx, ViewKeywords, ds)
	defer func() { done(err) }()

	rows, err := aggregate.By(ds, models.DimKeyword)
	if err != nil {
		return nil, err
	}
	sortDesc(rows, func(r models.AggregateRow) float64 { return r.Cost })
	keywords, err := segmentation.EvaluateKeywords(rows, th)
	if err != nil {
		return nil, err
	}

	view := &Keywords{
		Keywords:    keywords,
		NegateQueue: segmentation.NegateQueue(keywords, segmentation.NegateQueueSize),
		Summary:     keywordSummary(ds, keywords),
	}

	reasons := make([]models.NegateReason, 0, view.Summary.NegateCandidates)
	for _, k := range keywords {
		if k.Negate {
			reasons = append(reasons, k.NegateReason)
		}
	}
	countLabels(s, "keyword_negate", reasons)

	if view.Bids, err = s.channelBids(ds, th); err != nil {
		return nil, err
	}
	if view.AutoActions, view.AutoStats, err = s.autoActions(ds, th); err != nil {
		return nil, err
	}
	return view, nil
}

func keywordSummary(ds models.Dataset, keywords []segmentation.KeywordAssessment) KeywordSummary {
	total := aggregate.Total(ds)
	sum := KeywordSummary{
		Keywords: len(keywords),
		AvgCTR:   kpi.Div(float64(total.Clicks), float64(total.Impressions), 0),
		AvgCVR:   float64(total.Orders) / float64(max(total.Clicks, 1)),
		AvgCPC:   total.Cost / float64(max(total.Clicks, 1)),
	}
	for _, k := range keywords {
		if k.Negate {
			sum.NegateCandidates++
		}
	}
	return sum
}

func (s *Service) channelBids(ds models.Dataset, th models.TargetThresholds) (ChannelBids, error) {
	pairs, err := aggregate.By(ds, models.DimChannel, models.DimKeyword)
	if err != nil {
		return ChannelBids{}, err
	}
	bids, stats, err := segmentation.ClassifyChannelBids(pairs, th)
	if err != nil {
		return ChannelBids{}, err
	}
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Impact != bids[j].Impact {
			return bids[i].Impact > bids[j].Impact
		}
		return bids[i].Cost > bids[j].Cost
	})

	out := ChannelBids{TargetROAS: th.TargetROAS, AvgCPC: stats.AvgCPC, Channels: bids}
	actions := make([]models.BidAction, len(bids))
	for i, b := range bids {
		actions[i] = b.Action
		switch b.Action {
		case models.BidScale:
			out.ScaleChannels++
		case models.BidFixCostQuality, models.BidFixConversion:
			out.FixChannels++
		}
	}
	countLabels(s, "channel_bid", actions)
	return out, nil
}

// autoActions returns the auto-campaign terms that need a change, best
// upside first.
func (s *Service) autoActions(ds models.Dataset, th models.TargetThresholds) ([]segmentation.TermAssessment, segmentation.QualityStats, error) {
	terms, err := segmentation.AutoTerms(ds)
	if err != nil {
		return nil, segmentation.QualityStats{}, err
	}
	assessed, stats, err := segmentation.SuggestAutoTerms(terms, th)
	if err != nil {
		return nil, segmentation.QualityStats{}, err
	}

	suggestions := make([]models.TermSuggestion, len(assessed))
	actions := make([]segmentation.TermAssessment, 0, len(assessed))
	for i, a := range assessed {
		suggestions[i] = a.Suggestion
		if a.Suggestion != models.SuggestKeepRunning {
			actions = append(actions, a)
		}
	}
	countLabels(s, "auto_term", suggestions)

	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Impact > actions[j].Impact })
	return actions, stats, nil
}
