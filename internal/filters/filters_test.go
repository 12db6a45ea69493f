package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/adinsights/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() models.Dataset {
	return models.Dataset{HasAddToCart: true, Records: []models.PerformanceRecord{
		{Date: day(1), Channel: "Google", CampaignType: "Manual", Product: "Mug"},
		{Date: day(2), Channel: "Amazon", CampaignType: "Auto", Product: "Mug"},
		{Date: day(3).Add(13 * time.Hour), Channel: "Amazon", CampaignType: "Manual", Product: "Lamp"},
		{Date: day(4), Channel: "TikTok", CampaignType: "Auto", Product: "Lamp"},
	}}
}

func TestApply(t *testing.T) {
	ds := testDataset()

	tests := []struct {
		name     string
		criteria Criteria
		want     int
	}{
		{"empty selection keeps all", Criteria{}, 4},
		{"inclusive date range", Criteria{From: day(2), To: day(3)}, 2},
		{"open start", Criteria{To: day(1)}, 1},
		{"channel", Criteria{Channels: []string{"Amazon"}}, 2},
		{"combined", Criteria{Channels: []string{"Amazon", "TikTok"}, CampaignTypes: []string{"Auto"}, Products: []string{"Lamp"}}, 1},
		{"no match", Criteria{Products: []string{"Sofa"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(ds, tt.criteria)
			assert.Equal(t, tt.want, got.Len())
			assert.True(t, got.HasAddToCart)
		})
	}
	assert.Equal(t, 4, ds.Len(), "input must not be modified")
}

func TestCriteriaKey(t *testing.T) {
	a := Criteria{From: day(1), Channels: []string{"b", "a"}}
	b := Criteria{From: day(1).Add(2 * time.Hour), Channels: []string{"a", "b"}}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Criteria{Channels: []string{"a", "b"}}.Key())
	assert.Equal(t, a.Channels, []string{"b", "a"})
}

func TestCriteriaKeySeparatorsInValues(t *testing.T) {
	keys := []string{
		Criteria{Channels: []string{"a,b"}}.Key(),
		Criteria{Channels: []string{"a", "b"}}.Key(),
		Criteria{Channels: []string{"a|"}, CampaignTypes: []string{"b"}}.Key(),
		Criteria{Channels: []string{"a"}, CampaignTypes: []string{"|b"}}.Key(),
		Criteria{Channels: []string{""}}.Key(),
		Criteria{}.Key(),
		Criteria{Products: []string{"1:x"}}.Key(),
		Criteria{Products: []string{"1", "x"}}.Key(),
	}
	seen := map[string]int{}
	for i, k := range keys {
		if j, ok := seen[k]; ok {
			t.Fatalf("selections %d and %d share key %q", j, i, k)
		}
		seen[k] = i
	}
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(testDataset())
	assert.Equal(t, day(1), opts.MinDate)
	assert.Equal(t, day(4), opts.MaxDate)
	assert.Equal(t, []string{"Amazon", "Google", "TikTok"}, opts.Channels)
	assert.Equal(t, []string{"Auto", "Manual"}, opts.CampaignTypes)
	assert.Equal(t, []string{"Lamp", "Mug"}, opts.Products)

	empty := OptionsFor(models.Dataset{})
	assert.True(t, empty.MinDate.IsZero())
	assert.Empty(t, empty.Channels)
}
