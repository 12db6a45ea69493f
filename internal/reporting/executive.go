package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/patrickwarner/adinsights/internal/aggregate"
	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/segmentation"
)

// Totals are the headline KPIs of a selection.
type Totals struct {
	models.Volume
	models.DerivedMetrics
	ROASDelta float64 `json:"roas_delta"` // ROAS minus target ROAS
}

// TrendPoint is one day of the spend/revenue trend.
type TrendPoint struct {
	Date time.Time `json:"date"`
	models.Volume
	ROAS   float64 `json:"roas"`
	ROAS7d float64 `json:"roas_7d"` // trailing mean of daily ROAS
}

// ChannelMix is a channel's share of spend and revenue.
type ChannelMix struct {
	Channel string  `json:"channel"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
}

// Executive is the overview page: totals, trend, channel mix and the
// CTR/CVR quality matrix.
type Executive struct {
	Totals       Totals                        `json:"totals"`
	Trend        []TrendPoint                  `json:"trend"`
	ChannelMix   []ChannelMix                  `json:"channel_mix"`
	Quality      []segmentation.ChannelQuality `json:"channel_quality"`
	QualityStats segmentation.QualityStats     `json:"quality_stats"`
}

// Executive builds the overview for ds.
func (s *Service) Executive(ctx context.Context, ds models.Dataset, th models.TargetThresholds) (_ *Executive, err error) {
	_, done := s.start(ctx, ViewExecutive, ds)
	defer func() { done(err) }()

	if err := th.Validate(); err != nil {
		return nil, err
	}

	total := aggregate.Total(ds)
	view := &Executive{
		Totals: Totals{
			Volume:         total.Volume,
			DerivedMetrics: total.DerivedMetrics,
			ROASDelta:      total.ROAS - th.TargetROAS,
		},
	}

	days, err := aggregate.By(ds, models.DimDate)
	if err != nil {
		return nil, err
	}
	view.Trend = dailyTrend(days)

	channels, err := aggregate.By(ds, models.DimChannel)
	if err != nil {
		return nil, err
	}
	sortDesc(channels, func(r models.AggregateRow) float64 { return r.Cost })
	view.ChannelMix = make([]ChannelMix, len(channels))
	for i, c := range channels {
		view.ChannelMix[i] = ChannelMix{Channel: c.Channel, Cost: c.Cost, Revenue: c.Revenue}
	}

	view.Quality, view.QualityStats = segmentation.ClassifyChannelQuality(channels)
	actions := make([]models.QualityAction, len(view.Quality))
	for i, q := range view.Quality {
		actions[i] = q.Action
	}
	countLabels(s, "channel_quality", actions)
	return view, nil
}

func dailyTrend(days []models.AggregateRow) []TrendPoint {
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	roas := make([]float64, len(days))
	for i, d := range days {
		roas[i] = kpi.Div(d.Revenue, d.Cost, 0)
	}
	smoothed := rollingMean(roas, rollingWindow)

	out := make([]TrendPoint, len(days))
	for i, d := range days {
		out[i] = TrendPoint{Date: d.Date, Volume: d.Volume, ROAS: roas[i], ROAS7d: smoothed[i]}
	}
	return out
}
