package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/observability"
)

const sampleCSV = `date,channel,campaign,campaign_type,product,category,keyword,impressions,clicks,add_to_cart,orders,cost,revenue
2024-03-01,Amazon,Brand Auto,Auto,Mug,Kitchen,coffee mug,1000,40,8,3,25.50,90.00
2024-03-02T10:30:00Z,Google,Generic,Manual,Lamp,Home,desk lamp,500,10,,0,-4,
`

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.True(t, ds.HasAddToCart)

	first := ds.Records[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Brand Auto", first.Campaign)
	assert.Equal(t, models.CampaignTypeAuto, first.CampaignType)
	assert.Equal(t, int64(8), first.AddToCart)
	assert.Equal(t, 25.5, first.Cost)

	second := ds.Records[1]
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Zero(t, second.AddToCart)
	assert.Zero(t, second.Cost, "negative cost is clipped")
	assert.Zero(t, second.Revenue, "empty revenue is clipped")
}

func TestParseDateKeepsWrittenDay(t *testing.T) {
	tests := map[string]time.Time{
		"2024-03-02":                time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		"2024-03-02T01:30:00+02:00": time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		"2024-03-02T23:30:00-05:00": time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		"2024-03-02 23:59:59":       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := parseDate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadCSVWithoutAddToCart(t *testing.T) {
	in := "date,channel,campaign,campaign_type,product,category,keyword,impressions,clicks,orders,cost,revenue\n" +
		"2024-03-01,TikTok,Video,Auto,Cap,Apparel,cap,10,1,0,1.5,0\n"
	ds, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.False(t, ds.HasAddToCart)
	assert.Equal(t, 1, ds.Len())
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("date,channel\n2024-01-01,Google\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)

	bad := strings.Replace(sampleCSV, "2024-03-01", "03/01/2024", 1)
	_, err = ReadCSV(context.Background(), strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	bad = strings.Replace(sampleCSV, "1000,40", "many,40", 1)
	_, err = ReadCSV(context.Background(), strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "impressions")
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ads.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	ds, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	_, err = CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.Error(t, err)
}

func TestParseChannelScale(t *testing.T) {
	cs, err := ParseChannelScale(" Amazon=1.85, Google = 1.2 ")
	require.NoError(t, err)
	assert.Equal(t, ChannelScale{"Amazon": 1.85, "Google": 1.2}, cs)
	assert.Equal(t, "Amazon=1.85,Google=1.2", cs.String())

	cs, err = ParseChannelScale("")
	require.NoError(t, err)
	assert.Nil(t, cs)

	for _, bad := range []string{"Amazon", "Amazon=x", "=2", "Amazon=-1"} {
		_, err := ParseChannelScale(bad)
		assert.Error(t, err, bad)
	}
}

func TestChannelScaleApply(t *testing.T) {
	ds := models.Dataset{Records: []models.PerformanceRecord{
		{Channel: "Amazon", Volume: models.Volume{Impressions: 100, Clicks: 3, Orders: 1, Cost: 10.005, Revenue: 20}},
		{Channel: "Pinterest", Volume: models.Volume{Impressions: 7, Cost: 1.5}},
	}}

	out := DemoChannelScale.Apply(ds)
	assert.Equal(t, int64(185), out.Records[0].Impressions)
	assert.Equal(t, int64(6), out.Records[0].Clicks)
	assert.Equal(t, int64(2), out.Records[0].Orders)
	assert.InDelta(t, 18.51, out.Records[0].Cost, 1e-9)
	assert.InDelta(t, 37.0, out.Records[0].Revenue, 1e-9)
	assert.Equal(t, int64(7), out.Records[1].Impressions, "unlisted channels are unchanged")

	assert.Equal(t, int64(100), ds.Records[0].Impressions, "input is not modified")
	assert.Equal(t, ds, ChannelScale(nil).Apply(ds))
}

type flakySource struct {
	ds   models.Dataset
	fail bool
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Load(context.Context) (models.Dataset, error) {
	if f.fail {
		return models.Dataset{}, errors.New("boom")
	}
	return f.ds, nil
}

func TestStoreReload(t *testing.T) {
	src := &flakySource{ds: models.Dataset{Records: []models.PerformanceRecord{{Channel: "Amazon"}}}}
	store := NewStore(src, nil, zap.NewNop(), observability.NewNoOpRegistry())

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)

	first, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, "flaky", first.Source)

	src.fail = true
	_, err = store.Reload(context.Background())
	require.Error(t, err)

	cur, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur, "failed reload keeps the previous snapshot")

	src.fail = false
	second, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStoreAppliesScale(t *testing.T) {
	src := StaticSource{Dataset: models.Dataset{Records: []models.PerformanceRecord{
		{Channel: "TikTok", Volume: models.Volume{Clicks: 100}},
	}}}
	store := NewStore(src, DemoChannelScale, nil, nil)

	snap, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(38), snap.Dataset.Records[0].Clicks)
	assert.Equal(t, "static", snap.Source)
}

func TestStoreWatchStopsOnCancel(t *testing.T) {
	store := NewStore(StaticSource{}, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := store.Current()
		return err == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
