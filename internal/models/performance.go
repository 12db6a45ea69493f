package models

import "time"

// Campaign types as they appear in the source data. Anything else is
// carried through verbatim and treated as neither auto nor manual.
const (
	CampaignTypeAuto   = "Auto"
	CampaignTypeManual = "Manual"
)

// Volume holds the additive counters of a performance row. These are the only
// fields that may be summed when rows are grouped; every ratio is derived
// from them afterwards.
type Volume struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	AddToCart   int64   `json:"add_to_cart"`
	Orders      int64   `json:"orders"`
	Cost        float64 `json:"cost"`    // Spend in account currency
	Revenue     float64 `json:"revenue"` // Attributed revenue in account currency
}

// Add accumulates o into v.
func (v *Volume) Add(o Volume) {
	v.Impressions += o.Impressions
	v.Clicks += o.Clicks
	v.AddToCart += o.AddToCart
	v.Orders += o.Orders
	v.Cost += o.Cost
	v.Revenue += o.Revenue
}

// PerformanceRecord is one day of delivery for a
// (channel, campaign, campaign type, product, category, keyword) combination.
type PerformanceRecord struct {
	Date         time.Time `json:"date"` // UTC midnight of the calendar day
	Channel      string    `json:"channel"`
	Campaign     string    `json:"campaign"`
	CampaignType string    `json:"campaign_type"`
	Product      string    `json:"product"`
	Category     string    `json:"category"`
	Keyword      string    `json:"keyword"`
	Volume
}

// Dataset is an immutable-per-call collection of records. HasAddToCart
// reports whether the source schema carried the optional add_to_cart column;
// it is decided once per load and never per row.
type Dataset struct {
	Records      []PerformanceRecord
	HasAddToCart bool
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// WithRecords returns a dataset sharing d's schema but holding recs.
func (d Dataset) WithRecords(recs []PerformanceRecord) Dataset {
	return Dataset{Records: recs, HasAddToCart: d.HasAddToCart}
}

// Day returns the calendar day of t, as written in t's own location, at UTC
// midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Column names shared by every tabular source. AddToCart is optional; the
// rest are required.
const (
	ColDate         = "date"
	ColChannel      = "channel"
	ColCampaign     = "campaign"
	ColCampaignType = "campaign_type"
	ColProduct      = "product"
	ColCategory     = "category"
	ColKeyword      = "keyword"
	ColImpressions  = "impressions"
	ColClicks       = "clicks"
	ColAddToCart    = "add_to_cart"
	ColOrders       = "orders"
	ColCost         = "cost"
	ColRevenue      = "revenue"
)

// RequiredColumns must be present in every source.
var RequiredColumns = []string{
	ColDate, ColChannel, ColCampaign, ColCampaignType, ColProduct, ColCategory,
	ColKeyword, ColImpressions, ColClicks, ColOrders, ColCost, ColRevenue,
}

// Clip forces every field to be non-negative. NaN values become 0.
func (v *Volume) Clip() {
	v.Impressions = max(v.Impressions, 0)
	v.Clicks = max(v.Clicks, 0)
	v.AddToCart = max(v.AddToCart, 0)
	v.Orders = max(v.Orders, 0)
	v.Cost = clipFloat(v.Cost)
	v.Revenue = clipFloat(v.Revenue)
}

func clipFloat(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	return f
}
