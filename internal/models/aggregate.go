package models

import "time"

// Dimension names a grouping column.
type Dimension string

const (
	DimDate         Dimension = "date"
	DimChannel      Dimension = "channel"
	DimCampaign     Dimension = "campaign"
	DimCampaignType Dimension = "campaign_type"
	DimProduct      Dimension = "product"
	DimCategory     Dimension = "category"
	DimKeyword      Dimension = "keyword"
)

// Dimensions lists every supported grouping column.
var Dimensions = []Dimension{
	DimDate, DimChannel, DimCampaign, DimCampaignType, DimProduct, DimCategory, DimKeyword,
}

// Valid reports whether d names a known column.
func (d Dimension) Valid() bool {
	for _, k := range Dimensions {
		if d == k {
			return true
		}
	}
	return false
}

// GroupKey identifies one aggregate and is comparable, so it can key a map.
// Only the dimensions used for grouping are set; the rest keep their zero
// value and are dropped from JSON. Date is always a UTC midnight.
type GroupKey struct {
	Date         time.Time `json:"date,omitzero"`
	Channel      string    `json:"channel,omitempty"`
	Campaign     string    `json:"campaign,omitempty"`
	CampaignType string    `json:"campaign_type,omitempty"`
	Product      string    `json:"product,omitempty"`
	Category     string    `json:"category,omitempty"`
	Keyword      string    `json:"keyword,omitempty"`
}

// AggregateRow is the sum of every record sharing a GroupKey, with metrics
// derived from the sums.
type AggregateRow struct {
	GroupKey
	Volume
	DerivedMetrics
}
