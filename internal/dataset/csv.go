package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patrickwarner/adinsights/internal/models"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime}

// CSVSource reads a CSV file with a header row.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string { return "csv" }

// Load opens and parses the file.
func (s CSVSource) Load(ctx context.Context) (models.Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadCSV(ctx, f)
}

// ReadCSV parses performance rows from r. The header decides whether the
// dataset carries add-to-cart counts. Negative and NaN values are clipped
// to 0.
func ReadCSV(ctx context.Context, r io.Reader) (models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return models.Dataset{}, fmt.Errorf("%s: %w", models.ColDate, ErrMissingColumn)
	}
	if err != nil {
		return models.Dataset{}, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range models.RequiredColumns {
		if _, ok := idx[c]; !ok {
			return models.Dataset{}, fmt.Errorf("%s: %w", c, ErrMissingColumn)
		}
	}
	_, hasATC := idx[models.ColAddToCart]

	ds := models.Dataset{HasAddToCart: hasATC}
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return models.Dataset{}, err
			}
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRow(row, idx, hasATC)
		if err != nil {
			return models.Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func parseRow(row []string, idx map[string]int, hasATC bool) (models.PerformanceRecord, error) {
	field := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(field(models.ColDate))
	if err != nil {
		return models.PerformanceRecord{}, err
	}
	rec := models.PerformanceRecord{
		Date:         date,
		Channel:      field(models.ColChannel),
		Campaign:     field(models.ColCampaign),
		CampaignType: field(models.ColCampaignType),
		Product:      field(models.ColProduct),
		Category:     field(models.ColCategory),
		Keyword:      field(models.ColKeyword),
	}

	counts := []struct {
		col string
		dst *int64
	}{
		{models.ColImpressions, &rec.Impressions},
		{models.ColClicks, &rec.Clicks},
		{models.ColOrders, &rec.Orders},
	}
	if hasATC {
		counts = append(counts, struct {
			col string
			dst *int64
		}{models.ColAddToCart, &rec.AddToCart})
	}
	for _, c := range counts {
		v, err := parseNumber(field(c.col))
		if err != nil {
			return models.PerformanceRecord{}, fmt.Errorf("%s: %w", c.col, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		*c.dst = int64(math.Round(v))
	}

	if rec.Cost, err = parseNumber(field(models.ColCost)); err != nil {
		return models.PerformanceRecord{}, fmt.Errorf("%s: %w", models.ColCost, err)
	}
	if rec.Revenue, err = parseNumber(field(models.ColRevenue)); err != nil {
		return models.PerformanceRecord{}, fmt.Errorf("%s: %w", models.ColRevenue, err)
	}
	rec.Clip()
	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseNumber treats an empty cell as missing and returns NaN, which Clip
// later turns into 0.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
