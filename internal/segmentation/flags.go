package segmentation

import (
	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
)

// PromoteROAS is the ROAS above which an auto-campaign row is flagged for
// promotion.
const PromoteROAS = 3.0

// Flag labels a single record. It looks at no other row.
func Flag(rec models.PerformanceRecord, m models.DerivedMetrics, minSpend float64) models.RowFlag {
	switch {
	case rec.Cost > minSpend && rec.Orders == 0:
		return models.FlagNegative
	case m.ROAS > PromoteROAS && rec.CampaignType == models.CampaignTypeAuto:
		return models.FlagPromote
	default:
		return models.FlagOK
	}
}

// FlaggedRecord is a record with its metrics and flag attached.
type FlaggedRecord struct {
	models.PerformanceRecord
	models.DerivedMetrics
	Flag models.RowFlag `json:"flag"`
}

// FlagRecords applies Flag to every record of ds using th.FlagMinSpend.
func FlagRecords(ds models.Dataset, th models.TargetThresholds) ([]FlaggedRecord, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	metrics := kpi.DeriveRecords(ds)
	out := make([]FlaggedRecord, len(ds.Records))
	for i, rec := range ds.Records {
		out[i] = FlaggedRecord{
			PerformanceRecord: rec,
			DerivedMetrics:    metrics[i],
			Flag:              Flag(rec, metrics[i], th.FlagMinSpend),
		}
	}
	return out, nil
}
