package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/reporting"
)

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func newInsights(t *testing.T) *InsightsServer {
	t.Helper()
	ds := models.Dataset{Records: []models.PerformanceRecord{
		{
			Date: day(1), Channel: "Amazon", Campaign: "A1", CampaignType: models.CampaignTypeAuto,
			Product: "Mug", Category: "Kitchen", Keyword: "mug",
			Volume: models.Volume{Impressions: 1000, Clicks: 100, Orders: 10, Cost: 100, Revenue: 400},
		},
		{
			Date: day(2), Channel: "Google", Campaign: "G1", CampaignType: models.CampaignTypeManual,
			Product: "Lamp", Category: "Home", Keyword: "lamp",
			Volume: models.Volume{Impressions: 2000, Clicks: 50, Cost: 80},
		},
	}}
	store := dataset.NewStore(dataset.StaticSource{Dataset: ds}, nil, zap.NewNop(), nil)
	_, err := store.Reload(context.Background())
	require.NoError(t, err)
	return &InsightsServer{
		store:      store,
		reports:    reporting.NewService(zap.NewNop(), nil),
		thresholds: models.DefaultThresholds(),
		logger:     zap.NewNop(),
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func f64(v float64) *float64 { return &v }

func TestViewToolFiltersAndOverrides(t *testing.T) {
	s := newInsights(t)
	res, _, err := s.viewTool(reporting.ViewExecutive)(context.Background(), nil, ViewInput{
		Channels:   []string{"Amazon"},
		TargetROAS: f64(3),
	})
	require.NoError(t, err)

	var out struct {
		View       string                  `json:"view"`
		Rows       int                     `json:"rows"`
		Thresholds models.TargetThresholds `json:"thresholds"`
		Data       struct {
			Totals struct {
				Cost      float64 `json:"cost"`
				ROASDelta float64 `json:"roas_delta"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, reporting.ViewExecutive, out.View)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, 3.0, out.Thresholds.TargetROAS)
	assert.Equal(t, 100.0, out.Data.Totals.Cost)
	assert.InDelta(t, 1.0, out.Data.Totals.ROASDelta, 1e-9)
}

func TestViewToolRejectsBadInput(t *testing.T) {
	s := newInsights(t)
	tool := s.viewTool(reporting.ViewFlags)
	for name, in := range map[string]ViewInput{
		"bad date":       {From: "2024-13-01"},
		"reversed range": {From: "2024-03-05", To: "2024-03-01"},
		"zero roas":      {TargetROAS: f64(0)},
		"negative spend": {MinSpend: f64(-1)},
		"empty channel":  {Channels: []string{""}},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := tool(context.Background(), nil, in)
			assert.Error(t, err)
		})
	}
}

func TestSelectionDates(t *testing.T) {
	crit, th, err := ViewInput{From: "2024-03-02", To: "2024-03-02"}.selection(models.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, day(2), crit.From)
	assert.Equal(t, day(2), crit.To)
	assert.Equal(t, models.DefaultThresholds(), th)
}

func TestFilterOptionsAndReload(t *testing.T) {
	s := newInsights(t)

	res, _, err := s.FilterOptions(context.Background(), nil, NoInput{})
	require.NoError(t, err)
	var opts struct {
		Channels []string `json:"channels"`
		Products []string `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &opts))
	assert.Equal(t, []string{"Amazon", "Google"}, opts.Channels)
	assert.Equal(t, []string{"Lamp", "Mug"}, opts.Products)

	res, _, err = s.ReloadDataset(context.Background(), nil, NoInput{})
	require.NoError(t, err)
	var snap dataset.Snapshot
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &snap))
	assert.Equal(t, uint64(2), snap.Version)
	assert.Equal(t, "static", snap.Source)
}

func TestRegisteredTools(t *testing.T) {
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "adinsights", Version: "test"}, nil)
	newInsights(t).register(server)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	list, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"executive_summary", "campaign_optimization", "keyword_actions", "sales_outcomes",
		"data_quality_flags", "filter_options", "reload_dataset",
	}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "sales_outcomes",
		Arguments: map[string]any{"products": []string{"Mug"}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"rows":1`)
}
