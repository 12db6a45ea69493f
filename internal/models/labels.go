package models

// RowFlag is the per-record optimization flag.
type RowFlag string

const (
	FlagNegative RowFlag = "NEGATIVE"
	FlagPromote  RowFlag = "PROMOTE"
	FlagOK       RowFlag = "OK"
)

// QualityAction is the channel funnel diagnosis from the CTR/CVR matrix.
type QualityAction string

const (
	QualityScaleBudget      QualityAction = "Scale budget"
	QualityFixLanding       QualityAction = "Fix landing page / offer"
	QualityImproveCreatives QualityAction = "Improve creatives"
	QualityRefineTargeting  QualityAction = "Refine targeting"
)

// Segment is the campaign volume x efficiency quadrant.
type Segment string

const (
	SegmentScale    Segment = "Scale"
	SegmentOptimize Segment = "Optimize"
	SegmentTest     Segment = "Test"
	SegmentPause    Segment = "Pause"
)

// Segments lists every segment in display order.
var Segments = []Segment{SegmentScale, SegmentOptimize, SegmentTest, SegmentPause}

// Action returns the fixed recommendation for a segment.
func (s Segment) Action() string {
	switch s {
	case SegmentScale:
		return "Increase budget 10-20%"
	case SegmentOptimize:
		return "Reduce bids and tighten targeting"
	case SegmentTest:
		return "Try new creatives and audience expansion"
	default:
		return "Pause or keep minimal learning budget"
	}
}

// NegateReason explains why a keyword is (or would be) a negate candidate.
type NegateReason string

const (
	ReasonNoOrders   NegateReason = "No orders at current spend"
	ReasonLowROAS    NegateReason = "ROAS far below target"
	ReasonHighCPA    NegateReason = "CPA well above target"
	ReasonMixedDrift NegateReason = "Mixed performance drift"
)

// TermSuggestion is the next step for an auto-campaign search term.
type TermSuggestion string

const (
	SuggestPromoteToManual TermSuggestion = "PROMOTE_TO_MANUAL"
	SuggestNegate          TermSuggestion = "NEGATE"
	SuggestFixLanding      TermSuggestion = "FIX_LANDING"
	SuggestKeepRunning     TermSuggestion = "KEEP_RUNNING"
)

// BidAction is the channel-level CPC/ROAS recommendation.
type BidAction string

const (
	BidScale          BidAction = "Scale"
	BidFixCostQuality BidAction = "Fix cost + quality"
	BidFixConversion  BidAction = "Fix conversion"
	BidTightenBids    BidAction = "Tighten bids"
	BidMaintainOrTest BidAction = "Maintain/Test"
)
