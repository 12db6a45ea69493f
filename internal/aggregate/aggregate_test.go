package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adinsights/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestByRatioOfSums(t *testing.T) {
	ds := models.Dataset{Records: []models.PerformanceRecord{
		{Channel: "Google", Volume: models.Volume{Cost: 10, Revenue: 0}},
		{Channel: "Google", Volume: models.Volume{Cost: 0, Revenue: 10}},
	}}

	rows, err := By(ds, models.DimChannel)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Google", rows[0].Channel)
	assert.Equal(t, 10.0, rows[0].Cost)
	assert.Equal(t, 10.0, rows[0].Revenue)
	assert.Equal(t, 1.0, rows[0].ROAS)
}

func TestByMultipleDimensions(t *testing.T) {
	ds := models.Dataset{HasAddToCart: true, Records: []models.PerformanceRecord{
		{Date: day(1), Channel: "Amazon", Keyword: "shoes", Volume: models.Volume{Impressions: 100, Clicks: 10, AddToCart: 4, Orders: 2, Cost: 5, Revenue: 40}},
		{Date: day(1).Add(5 * time.Hour), Channel: "Amazon", Keyword: "shoes", Volume: models.Volume{Impressions: 100, Clicks: 30, AddToCart: 4, Orders: 2, Cost: 15, Revenue: 40}},
		{Date: day(2), Channel: "Amazon", Keyword: "boots", Volume: models.Volume{Impressions: 50, Clicks: 5, Cost: 2}},
		{Date: day(1), Channel: "Google", Keyword: "shoes", Volume: models.Volume{Impressions: 10, Clicks: 1, Cost: 1}},
	}}

	rows, err := By(ds, models.DimChannel, models.DimDate)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "Amazon", first.Channel)
	assert.Equal(t, day(1), first.Date)
	assert.Empty(t, first.Keyword)
	assert.Equal(t, int64(40), first.Clicks)
	assert.InDelta(t, 0.2, first.CTR, 1e-12)
	assert.InDelta(t, 0.1, first.CVR, 1e-12)
	assert.InDelta(t, 4.0, first.ROAS, 1e-12)
	assert.InDelta(t, 0.5, first.CPC, 1e-12)
	require.NotNil(t, first.ATCRate)
	assert.InDelta(t, 0.2, *first.ATCRate, 1e-12)

	assert.Equal(t, day(2), rows[1].Date)
	assert.False(t, rows[1].CPA.Valid())
	assert.Equal(t, "Google", rows[2].Channel)
}

func TestByNoDimensions(t *testing.T) {
	ds := models.Dataset{Records: []models.PerformanceRecord{
		{Channel: "A", Volume: models.Volume{Clicks: 2, Cost: 4}},
		{Channel: "B", Volume: models.Volume{Clicks: 2, Cost: 2}},
	}}
	rows, err := By(ds)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.5, rows[0].CPC, 1e-12)
	assert.Equal(t, Total(ds).Volume, rows[0].Volume)
}

func TestByEmpty(t *testing.T) {
	rows, err := By(models.Dataset{}, models.DimCampaign)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	total := Total(models.Dataset{})
	assert.Zero(t, total.Cost)
	assert.False(t, total.CPA.Valid())
}

func TestByUnknownDimension(t *testing.T) {
	_, err := By(models.Dataset{}, models.Dimension("region"))
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestAggregateRowJSON(t *testing.T) {
	rows, err := By(models.Dataset{Records: []models.PerformanceRecord{
		{Channel: "Google", Volume: models.Volume{Cost: 5}},
	}}, models.DimChannel)
	require.NoError(t, err)

	b, err := json.Marshal(rows[0])
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Google", out["channel"])
	assert.Nil(t, out["cpa"])
	assert.NotContains(t, out, "date")
	assert.NotContains(t, out, "keyword")
	assert.NotContains(t, out, "atc_rate")
}
