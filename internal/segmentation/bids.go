package segmentation

import (
	"math"

	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
)

const (
	bidScaleROAS    = 1.1  // ROAS at or above target * 1.1 can scale
	bidScaleCPC     = 1.05 // as long as CPC stays within avg * 1.05
	bidWeakROAS     = 0.9  // ROAS below target * 0.9 needs fixing
	bidExpensiveCPC = 1.1  // CPC above avg * 1.1 is expensive
)

// ChannelBid is a channel total with its CPC/ROAS action.
type ChannelBid struct {
	models.AggregateRow
	Keywords   int              `json:"keywords"`
	SpendShare float64          `json:"spend_share"`
	ROASGap    float64          `json:"roas_gap"`
	CPCGap     float64          `json:"cpc_gap"`
	EffIndex   float64          `json:"eff_index"`
	Action     models.BidAction `json:"action"`
	Impact     float64          `json:"impact"`
}

// BidActionFor applies the ordered channel rules; the first match wins.
func BidActionFor(roas, cpc float64, st BidStats, targetROAS float64) models.BidAction {
	switch {
	case roas >= targetROAS*bidScaleROAS && cpc <= st.AvgCPC*bidScaleCPC:
		return models.BidScale
	case roas < targetROAS*bidWeakROAS && cpc > st.AvgCPC*bidExpensiveCPC:
		return models.BidFixCostQuality
	case roas < targetROAS*bidWeakROAS:
		return models.BidFixConversion
	case cpc > st.AvgCPC*bidExpensiveCPC:
		return models.BidTightenBids
	default:
		return models.BidMaintainOrTest
	}
}

// ClassifyChannelBids rolls channel × keyword aggregates up to channel totals
// and compares them against the click-weighted average CPC. Pairs without
// clicks or spend have no CPC or ROAS; they are dropped before summing, so
// they count toward neither the channel totals, the baseline nor the
// keyword count.
func ClassifyChannelBids(pairs []models.AggregateRow, th models.TargetThresholds) ([]ChannelBid, BidStats, error) {
	if err := th.Validate(); err != nil {
		return nil, BidStats{}, err
	}

	var (
		order    []string
		totals   = make(map[string]*models.Volume)
		keywords = make(map[string]map[string]struct{})
		hasATC   bool
		st       BidStats
	)
	for _, p := range pairs {
		if p.Clicks == 0 || p.Cost == 0 {
			continue
		}
		hasATC = hasATC || p.ATCRate != nil
		v, ok := totals[p.Channel]
		if !ok {
			v = &models.Volume{}
			totals[p.Channel] = v
			keywords[p.Channel] = make(map[string]struct{})
			order = append(order, p.Channel)
		}
		v.Add(p.Volume)
		keywords[p.Channel][p.Keyword] = struct{}{}
		st.TotalCost += p.Cost
		st.TotalClicks += p.Clicks
	}
	if st.TotalClicks > 0 {
		st.AvgCPC = st.TotalCost / float64(st.TotalClicks)
	}

	target := th.TargetROAS
	out := make([]ChannelBid, len(order))
	for i, ch := range order {
		v := *totals[ch]
		c := models.AggregateRow{
			GroupKey:       models.GroupKey{Channel: ch},
			Volume:         v,
			DerivedMetrics: kpi.Derive(v, hasATC),
		}
		out[i] = ChannelBid{
			AggregateRow: c,
			Keywords:     len(keywords[ch]),
			SpendShare:   c.Cost / math.Max(st.TotalCost, 1),
			ROASGap:      c.ROAS - target,
			CPCGap:       c.CPC - st.AvgCPC,
			EffIndex:     (c.ROAS / math.Max(target, 0.01)) / (c.CPC / math.Max(st.AvgCPC, 0.01)),
			Action:       BidActionFor(c.ROAS, c.CPC, st, target),
			Impact:       c.Cost * math.Max(0, target-c.ROAS),
		}
	}
	return out, st, nil
}
