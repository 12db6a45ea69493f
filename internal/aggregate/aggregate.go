// Package aggregate groups performance records and re-derives metrics on the
// grouped totals. Ratios are always computed from summed counters, never by
// averaging per-record ratios.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
)

// ErrUnknownDimension is returned for a grouping column that does not exist.
var ErrUnknownDimension = errors.New("unknown dimension")

// By sums the volume fields of ds per distinct combination of dims and derives
// metrics on the sums. Rows come back in order of first appearance; sorting
// for display is left to the caller. With no dims the whole dataset collapses
// into a single total row (or none when ds is empty).
func By(ds models.Dataset, dims ...models.Dimension) ([]models.AggregateRow, error) {
	for _, d := range dims {
		if !d.Valid() {
			return nil, fmt.Errorf("group by %q: %w", d, ErrUnknownDimension)
		}
	}

	index := make(map[models.GroupKey]int)
	rows := make([]models.AggregateRow, 0)
	for i := range ds.Records {
		rec := &ds.Records[i]
		key := keyFor(rec, dims)
		pos, ok := index[key]
		if !ok {
			pos = len(rows)
			index[key] = pos
			rows = append(rows, models.AggregateRow{GroupKey: key})
		}
		rows[pos].Volume.Add(rec.Volume)
	}

	for i := range rows {
		rows[i].DerivedMetrics = kpi.Derive(rows[i].Volume, ds.HasAddToCart)
	}
	return rows, nil
}

// Total returns the single ratio-of-sums row over all of ds. An empty dataset
// yields a zero row with metrics derived from zeros.
func Total(ds models.Dataset) models.AggregateRow {
	var row models.AggregateRow
	for i := range ds.Records {
		row.Volume.Add(ds.Records[i].Volume)
	}
	row.DerivedMetrics = kpi.Derive(row.Volume, ds.HasAddToCart)
	return row
}

// keyFor projects rec onto dims.
func keyFor(rec *models.PerformanceRecord, dims []models.Dimension) models.GroupKey {
	var k models.GroupKey
	for _, d := range dims {
		switch d {
		case models.DimDate:
			k.Date = models.Day(rec.Date)
		case models.DimChannel:
			k.Channel = rec.Channel
		case models.DimCampaign:
			k.Campaign = rec.Campaign
		case models.DimCampaignType:
			k.CampaignType = rec.CampaignType
		case models.DimProduct:
			k.Product = rec.Product
		case models.DimCategory:
			k.Category = rec.Category
		case models.DimKeyword:
			k.Keyword = rec.Keyword
		}
	}
	return k
}
