package reporting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/segmentation"
)

type labelRegistry struct {
	mu     sync.Mutex
	labels map[string]int
	views  map[string]int
}

func newLabelRegistry() *labelRegistry {
	return &labelRegistry{labels: map[string]int{}, views: map[string]int{}}
}

func (r *labelRegistry) IncrementRequests(string, string, string)           {}
func (r *labelRegistry) RecordRequestLatency(string, string, time.Duration) {}
func (r *labelRegistry) SetDatasetRows(int)                                 {}
func (r *labelRegistry) IncrementDatasetReloads(string)                     {}
func (r *labelRegistry) IncrementCacheLookups(string)                       {}

func (r *labelRegistry) AddLabels(classifier, label string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[classifier+"/"+label] += n
}

func (r *labelRegistry) RecordViewBuild(view string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[view]++
}

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func fixture() models.Dataset {
	return models.Dataset{Records: []models.PerformanceRecord{
		{
			Date: day(1), Channel: "Amazon", Campaign: "A1", CampaignType: models.CampaignTypeAuto,
			Product: "Mug", Category: "Kitchen", Keyword: "mug",
			Volume: models.Volume{Impressions: 1000, Clicks: 100, Orders: 10, Cost: 100, Revenue: 400},
		},
		{
			Date: day(2), Channel: "Google", Campaign: "G1", CampaignType: models.CampaignTypeManual,
			Product: "Lamp", Category: "Home", Keyword: "lamp",
			Volume: models.Volume{Impressions: 2000, Clicks: 50, Orders: 0, Cost: 80, Revenue: 0},
		},
		{
			Date: day(2), Channel: "Amazon", Campaign: "A1", CampaignType: models.CampaignTypeAuto,
			Product: "Mug", Category: "Kitchen", Keyword: "cheap mug",
			Volume: models.Volume{Impressions: 500, Clicks: 20, Orders: 1, Cost: 10, Revenue: 20},
		},
	}}
}

func TestExecutive(t *testing.T) {
	reg := newLabelRegistry()
	svc := NewService(nil, reg)

	view, err := svc.Executive(context.Background(), fixture(), models.DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 190, view.Totals.Cost, 1e-9)
	assert.InDelta(t, 420.0/190, view.Totals.ROAS, 1e-9)
	assert.InDelta(t, 420.0/190-2.8, view.Totals.ROASDelta, 1e-9)
	assert.Nil(t, view.Totals.ATCRate)

	require.Len(t, view.Trend, 2)
	assert.Equal(t, day(1), view.Trend[0].Date)
	assert.InDelta(t, 4.0, view.Trend[0].ROAS7d, 1e-9)
	assert.InDelta(t, (4.0+20.0/90)/2, view.Trend[1].ROAS7d, 1e-9)

	require.Len(t, view.ChannelMix, 2)
	assert.Equal(t, "Amazon", view.ChannelMix[0].Channel)

	require.Len(t, view.Quality, 2)
	assert.Equal(t, models.QualityScaleBudget, view.Quality[0].Action)
	assert.Equal(t, models.QualityRefineTargeting, view.Quality[1].Action)
	assert.InDelta(t, (0.08+0.025)/2, view.QualityStats.CTRMedian, 1e-9)

	assert.Equal(t, 1, reg.labels["channel_quality/Scale budget"])
	assert.Equal(t, 1, reg.views[ViewExecutive])
}

func TestOptimization(t *testing.T) {
	view, err := NewService(nil, nil).Optimization(context.Background(), fixture(), models.DefaultThresholds())
	require.NoError(t, err)

	require.Len(t, view.Campaigns, 2)
	assert.Equal(t, "G1", view.Campaigns[0].Campaign, "highest priority first")
	assert.InDelta(t, 224, view.Campaigns[0].Priority, 1e-9)
	assert.Equal(t, models.SegmentPause, view.Campaigns[0].Segment)
	assert.Equal(t, models.SegmentScale, view.Campaigns[1].Segment)
	assert.Zero(t, view.Campaigns[1].Priority)
	assert.InDelta(t, 95, view.CutLines.CostMedian, 1e-9)

	require.Len(t, view.SegmentMix, 2)
	assert.Equal(t, models.SegmentScale, view.SegmentMix[0].Segment)
	assert.Equal(t, 1, view.SegmentMix[0].Campaigns)
	assert.InDelta(t, 110.0/190, view.SegmentMix[0].SpendShare, 1e-9)
	assert.Equal(t, models.SegmentPause, view.SegmentMix[1].Segment)
}

func TestKeywords(t *testing.T) {
	reg := newLabelRegistry()
	view, err := NewService(nil, reg).Keywords(context.Background(), fixture(), models.DefaultThresholds())
	require.NoError(t, err)

	require.Len(t, view.Keywords, 3)
	assert.Equal(t, []string{"mug", "lamp", "cheap mug"},
		[]string{view.Keywords[0].Keyword, view.Keywords[1].Keyword, view.Keywords[2].Keyword})

	assert.Equal(t, KeywordSummary{
		Keywords:         3,
		NegateCandidates: 1,
		AvgCTR:           170.0 / 3500,
		AvgCVR:           11.0 / 170,
		AvgCPC:           190.0 / 170,
	}, view.Summary)

	require.Len(t, view.NegateQueue, 1)
	assert.Equal(t, "lamp", view.NegateQueue[0].Keyword)
	assert.Equal(t, models.ReasonNoOrders, view.NegateQueue[0].NegateReason)
	assert.InDelta(t, 96, view.NegateQueue[0].NegatePriority, 1e-9)

	bids := view.Bids
	assert.InDelta(t, 190.0/170, bids.AvgCPC, 1e-9)
	assert.Equal(t, 1, bids.ScaleChannels)
	assert.Equal(t, 1, bids.FixChannels)
	require.Len(t, bids.Channels, 2)
	assert.Equal(t, "Google", bids.Channels[0].Channel)
	assert.Equal(t, models.BidFixCostQuality, bids.Channels[0].Action)
	assert.Equal(t, 1, bids.Channels[0].Keywords)
	assert.Equal(t, models.BidScale, bids.Channels[1].Action)
	assert.Equal(t, 2, bids.Channels[1].Keywords)

	require.Len(t, view.AutoActions, 1)
	assert.Equal(t, "mug", view.AutoActions[0].Keyword)
	assert.Equal(t, models.SuggestPromoteToManual, view.AutoActions[0].Suggestion)
	assert.InDelta(t, 120, view.AutoActions[0].Impact, 1e-9)

	assert.Equal(t, 1, reg.labels["auto_term/KEEP_RUNNING"])
	assert.Equal(t, 1, reg.labels["keyword_negate/No orders at current spend"])
}

func TestChannelBidsDropZeroClickKeywords(t *testing.T) {
	ds := models.Dataset{Records: []models.PerformanceRecord{
		{Date: day(1), Channel: "Google", Keyword: "a", Volume: models.Volume{Clicks: 100, Cost: 100, Revenue: 300}},
		{Date: day(1), Channel: "Google", Keyword: "b", Volume: models.Volume{Cost: 50}},
		{Date: day(1), Channel: "Amazon", Keyword: "c", Volume: models.Volume{Clicks: 100, Cost: 100, Revenue: 400}},
	}}
	view, err := NewService(nil, nil).Keywords(context.Background(), ds, models.DefaultThresholds())
	require.NoError(t, err)

	bids := view.Bids
	assert.InDelta(t, 1.0, bids.AvgCPC, 1e-12)
	require.Len(t, bids.Channels, 2)

	byChannel := map[string]segmentation.ChannelBid{}
	for _, b := range bids.Channels {
		byChannel[b.Channel] = b
	}
	google := byChannel["Google"]
	assert.InDelta(t, 100, google.Cost, 1e-9)
	assert.InDelta(t, 3.0, google.ROAS, 1e-12)
	assert.InDelta(t, 1.0, google.CPC, 1e-12)
	assert.Equal(t, 1, google.Keywords)
	assert.Equal(t, models.BidMaintainOrTest, google.Action)
	assert.Equal(t, models.BidScale, byChannel["Amazon"].Action)
}

func TestSales(t *testing.T) {
	view, err := NewService(nil, nil).Sales(context.Background(), fixture(), models.DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 420, view.Totals.Revenue, 1e-9)
	assert.Equal(t, int64(11), view.Totals.Orders)
	assert.InDelta(t, 420.0/11, view.Totals.AOV, 1e-9)
	assert.Nil(t, view.Totals.CheckoutRate)
	assert.InDelta(t, 1, view.Totals.TopProductShare, 1e-9)

	require.Len(t, view.Daily, 2)
	assert.InDelta(t, 5.5, view.Daily[1].Orders7d, 1e-9)
	assert.InDelta(t, 20, view.Daily[1].AOV, 1e-9)

	require.Len(t, view.Categories, 2)
	assert.Equal(t, "Kitchen", view.Categories[0].Category)
	assert.Zero(t, view.Categories[1].AOV)

	require.Len(t, view.Products, 2)
	assert.Equal(t, "Mug", view.Products[0].Product)
	assert.InDelta(t, 1, view.Products[0].RevShare, 1e-9)
	assert.Equal(t, []ParetoPoint{
		{Rank: 1, Product: "Mug", Revenue: 420, CumRevShare: 1},
		{Rank: 2, Product: "Lamp", Revenue: 0, CumRevShare: 1},
	}, view.Pareto)
}

func TestSalesCheckoutRate(t *testing.T) {
	ds := fixture()
	ds.HasAddToCart = true
	ds.Records[0].AddToCart = 22

	view, err := NewService(nil, nil).Sales(context.Background(), ds, models.DefaultThresholds())
	require.NoError(t, err)
	require.NotNil(t, view.Totals.CheckoutRate)
	assert.InDelta(t, 0.5, *view.Totals.CheckoutRate, 1e-9)
}

func TestFlags(t *testing.T) {
	reg := newLabelRegistry()
	view, err := NewService(nil, reg).Flags(context.Background(), fixture(), models.DefaultThresholds())
	require.NoError(t, err)

	require.Len(t, view.Records, 3)
	assert.Equal(t, models.FlagPromote, view.Records[0].Flag)
	assert.Equal(t, models.FlagNegative, view.Records[1].Flag)
	assert.Equal(t, models.FlagOK, view.Records[2].Flag)
	assert.Equal(t, map[models.RowFlag]int{models.FlagPromote: 1, models.FlagNegative: 1, models.FlagOK: 1}, view.Counts)
	assert.Equal(t, 1, reg.labels["row_flag/NEGATIVE"])
}

func TestEmptyDataset(t *testing.T) {
	svc := NewService(nil, nil)
	th := models.DefaultThresholds()
	for _, name := range append(Views, ViewFlags) {
		v, err := svc.Build(context.Background(), name, models.Dataset{}, th)
		require.NoError(t, err, name)
		assert.NotNil(t, v, name)
	}

	exec, err := svc.Executive(context.Background(), models.Dataset{}, th)
	require.NoError(t, err)
	assert.Empty(t, exec.Trend)
	assert.Zero(t, exec.Totals.ROAS)
	assert.False(t, exec.Totals.CPA.Valid())
}

func TestInvalidThresholds(t *testing.T) {
	svc := NewService(nil, nil)
	th := models.DefaultThresholds()
	th.TargetROAS = 0
	for _, name := range append(Views, ViewFlags) {
		_, err := svc.Build(context.Background(), name, fixture(), th)
		assert.ErrorIs(t, err, models.ErrInvalidThresholds, name)
	}
	_, err := svc.All(context.Background(), fixture(), th)
	assert.ErrorIs(t, err, models.ErrInvalidThresholds)
}

func TestBuildUnknownView(t *testing.T) {
	_, err := NewService(nil, nil).Build(context.Background(), "funnel", fixture(), models.DefaultThresholds())
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestAll(t *testing.T) {
	reg := newLabelRegistry()
	d, err := NewService(nil, reg).All(context.Background(), fixture(), models.DefaultThresholds())
	require.NoError(t, err)
	assert.NotNil(t, d.Executive)
	assert.NotNil(t, d.Optimization)
	assert.NotNil(t, d.Keywords)
	assert.NotNil(t, d.Sales)
	for _, v := range Views {
		assert.Equal(t, 1, reg.views[v], v)
	}
}

func TestRollingMean(t *testing.T) {
	got := rollingMean([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 7)
	assert.Equal(t, []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 5}, got)
	assert.Empty(t, rollingMean(nil, 7))
}
