package reporting

import (
	"context"

	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/segmentation"
)

// Flags lists every record with its row flag.
type Flags struct {
	Counts  map[models.RowFlag]int       `json:"counts"`
	Records []segmentation.FlaggedRecord `json:"records"`
}

// Flags labels each record NEGATIVE, PROMOTE or OK.
func (s *Service) Flags(ctx context.Context, ds models.Dataset, th models.TargetThresholds) (_ *Flags, err error) {
	_, done := s.start(ctx, ViewFlags, ds)
	defer func() { done(err) }()

	records, err := segmentation.FlagRecords(ds, th)
	if err != nil {
		return nil, err
	}
	labels := make([]models.RowFlag, len(records))
	for i, r := range records {
		labels[i] = r.Flag
	}
	return &Flags{Counts: countLabels(s, "row_flag", labels), Records: records}, nil
}
