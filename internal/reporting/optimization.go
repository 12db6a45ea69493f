package reporting

import (
	"context"
	"sort"

	"github.com/patrickwarner/adinsights/internal/aggregate"
	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/segmentation"
)

// SegmentMix summarizes one segment's share of the campaign portfolio.
type SegmentMix struct {
	Segment    models.Segment `json:"segment"`
	Campaigns  int            `json:"campaigns"`
	Cost       float64        `json:"cost"`
	Revenue    float64        `json:"revenue"`
	SpendShare float64        `json:"spend_share"`
}

// Optimization is the budget reallocation page.
type Optimization struct {
	Campaigns  []segmentation.CampaignSegment `json:"campaigns"`
	CutLines   segmentation.SegmentStats      `json:"cut_lines"`
	SegmentMix []SegmentMix                   `json:"segment_mix"`
}

// Optimization segments every campaign × channel × campaign type and ranks
// the result by revenue upside.
func (s *Service) Optimization(ctx context.Context, ds models.Dataset, th models.TargetThresholds) (_ *Optimization, err error) {
	_, done := s.start(ctx, ViewOptimization, ds)
	defer func() { done(err) }()

	rows, err := aggregate.By(ds, models.DimCampaign, models.DimChannel, models.DimCampaignType)
	if err != nil {
		return nil, err
	}
	campaigns, stats, err := segmentation.SegmentCampaigns(rows, th)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(campaigns, func(i, j int) bool {
		if campaigns[i].Priority != campaigns[j].Priority {
			return campaigns[i].Priority > campaigns[j].Priority
		}
		return campaigns[i].Cost > campaigns[j].Cost
	})

	segments := make([]models.Segment, len(campaigns))
	for i, c := range campaigns {
		segments[i] = c.Segment
	}
	countLabels(s, "campaign_segment", segments)

	return &Optimization{
		Campaigns:  campaigns,
		CutLines:   stats,
		SegmentMix: segmentMix(campaigns),
	}, nil
}

// segmentMix lists the segments present in campaigns in their fixed order.
func segmentMix(campaigns []segmentation.CampaignSegment) []SegmentMix {
	bySegment := make(map[models.Segment]*SegmentMix)
	var totalCost float64
	for _, c := range campaigns {
		m, ok := bySegment[c.Segment]
		if !ok {
			m = &SegmentMix{Segment: c.Segment}
			bySegment[c.Segment] = m
		}
		m.Campaigns++
		m.Cost += c.Cost
		m.Revenue += c.Revenue
		totalCost += c.Cost
	}

	out := make([]SegmentMix, 0, len(bySegment))
	for _, seg := range models.Segments {
		m, ok := bySegment[seg]
		if !ok {
			continue
		}
		m.SpendShare = kpi.Div(m.Cost, totalCost, 0)
		out = append(out, *m)
	}
	return out
}
