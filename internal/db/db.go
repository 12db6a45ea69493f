// Package db connects to the SQL warehouses holding performance rows and to
// Redis.
package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/patrickwarner/adinsights/internal/models"
)

var (
	// ErrMissingColumn is returned when a performance table lacks a required
	// column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnavailable is returned when a warehouse is not configured.
	ErrUnavailable = errors.New("warehouse unavailable")
)

// PerformanceTable is the table both warehouses read from.
const PerformanceTable = "ad_performance"

// scanPerformance reads every row of rows into a dataset. Columns are matched
// by name so the optional add_to_cart column is detected from the result
// schema rather than per row; unknown columns are ignored.
func scanPerformance(rows *sql.Rows) (models.Dataset, error) {
	cols, err := rows.Columns()
	if err != nil {
		return models.Dataset{}, fmt.Errorf("read columns: %w", err)
	}
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	for _, c := range models.RequiredColumns {
		if !present[c] {
			return models.Dataset{}, fmt.Errorf("%s: %w", c, ErrMissingColumn)
		}
	}

	ds := models.Dataset{HasAddToCart: present[models.ColAddToCart]}
	for rows.Next() {
		var rec models.PerformanceRecord
		var atc sql.NullInt64
		if err := rows.Scan(bindColumns(cols, &rec, &atc)...); err != nil {
			return models.Dataset{}, fmt.Errorf("scan performance row: %w", err)
		}
		rec.Date = models.Day(rec.Date)
		rec.AddToCart = atc.Int64
		rec.Clip()
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return models.Dataset{}, fmt.Errorf("iterate performance rows: %w", err)
	}
	return ds, nil
}

func bindColumns(cols []string, rec *models.PerformanceRecord, atc *sql.NullInt64) []any {
	dest := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case models.ColDate:
			dest[i] = &rec.Date
		case models.ColChannel:
			dest[i] = &rec.Channel
		case models.ColCampaign:
			dest[i] = &rec.Campaign
		case models.ColCampaignType:
			dest[i] = &rec.CampaignType
		case models.ColProduct:
			dest[i] = &rec.Product
		case models.ColCategory:
			dest[i] = &rec.Category
		case models.ColKeyword:
			dest[i] = &rec.Keyword
		case models.ColImpressions:
			dest[i] = &rec.Impressions
		case models.ColClicks:
			dest[i] = &rec.Clicks
		case models.ColAddToCart:
			dest[i] = atc
		case models.ColOrders:
			dest[i] = &rec.Orders
		case models.ColCost:
			dest[i] = &rec.Cost
		case models.ColRevenue:
			dest[i] = &rec.Revenue
		default:
			dest[i] = new(any)
		}
	}
	return dest
}
