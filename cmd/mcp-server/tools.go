package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/filters"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/reporting"
	"github.com/patrickwarner/adinsights/internal/validation"
)

// ViewInput selects the rows a view is built from and optionally overrides
// the configured targets.
type ViewInput struct {
	From          string   `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To            string   `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Channels      []string `json:"channels,omitempty" validate:"dive,required"`
	CampaignTypes []string `json:"campaign_types,omitempty" validate:"dive,required"`
	Products      []string `json:"products,omitempty" validate:"dive,required"`

	TargetROAS       *float64 `json:"target_roas,omitempty" validate:"omitempty,gt=0"`
	TargetACOS       *float64 `json:"target_acos,omitempty" validate:"omitempty,gt=0"`
	TargetCPA        *float64 `json:"target_cpa,omitempty" validate:"omitempty,gt=0"`
	MinSpend         *float64 `json:"min_spend,omitempty" validate:"omitempty,gte=0"`
	FlagMinSpend     *float64 `json:"flag_min_spend,omitempty" validate:"omitempty,gte=0"`
	MinOrdersPromote *int64   `json:"min_orders_promote,omitempty" validate:"omitempty,gte=0"`
}

// NoInput is the argument type of tools without parameters.
type NoInput struct{}

// ViewOutput is the JSON document returned by every view tool.
type ViewOutput struct {
	View       string                  `json:"view"`
	Dataset    *dataset.Snapshot       `json:"dataset"`
	Filters    filters.Criteria        `json:"filters"`
	Thresholds models.TargetThresholds `json:"thresholds"`
	Rows       int                     `json:"rows"`
	Data       any                     `json:"data"`
}

// InsightsServer answers MCP tool calls from the shared dataset store.
type InsightsServer struct {
	store      *dataset.Store
	reports    *reporting.Service
	thresholds models.TargetThresholds
	logger     *zap.Logger
}

// selection validates in and converts it into filter criteria and the
// effective targets.
func (in ViewInput) selection(def models.TargetThresholds) (filters.Criteria, models.TargetThresholds, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return filters.Criteria{}, models.TargetThresholds{}, verr
	}
	c := filters.Criteria{
		Channels:      in.Channels,
		CampaignTypes: in.CampaignTypes,
		Products:      in.Products,
	}
	if in.From != "" {
		c.From, _ = time.Parse(time.DateOnly, in.From)
	}
	if in.To != "" {
		c.To, _ = time.Parse(time.DateOnly, in.To)
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return filters.Criteria{}, models.TargetThresholds{}, fmt.Errorf("to (%s) is before from (%s)", in.To, in.From)
	}

	th := def
	if in.TargetROAS != nil {
		th.TargetROAS = *in.TargetROAS
	}
	if in.TargetACOS != nil {
		th.TargetACOS = *in.TargetACOS
	}
	if in.TargetCPA != nil {
		th.TargetCPA = *in.TargetCPA
	}
	if in.MinSpend != nil {
		th.MinSpend = *in.MinSpend
	}
	if in.FlagMinSpend != nil {
		th.FlagMinSpend = *in.FlagMinSpend
	}
	if in.MinOrdersPromote != nil {
		th.MinOrdersPromote = *in.MinOrdersPromote
	}
	if err := th.Validate(); err != nil {
		return filters.Criteria{}, models.TargetThresholds{}, err
	}
	return c, th, nil
}

// viewTool returns the handler for one named view.
func (s *InsightsServer) viewTool(view string) func(context.Context, *mcp.CallToolRequest, ViewInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ViewInput) (*mcp.CallToolResult, any, error) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		snap, err := s.store.Current()
		if err != nil {
			return nil, nil, err
		}
		crit, th, err := in.selection(s.thresholds)
		if err != nil {
			return nil, nil, err
		}
		ds := filters.Apply(snap.Dataset, crit)
		data, err := s.reports.Build(ctx, view, ds, th)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Info("Built view for MCP client",
			zap.String("view", view),
			zap.Int("rows", ds.Len()),
			zap.Uint64("dataset_version", snap.Version))
		return textResult(ViewOutput{
			View:       view,
			Dataset:    snap,
			Filters:    crit,
			Thresholds: th,
			Rows:       ds.Len(),
			Data:       data,
		})
	}
}

// FilterOptions lists the channels, campaign types, products and date bounds
// of the loaded dataset.
func (s *InsightsServer) FilterOptions(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, nil, err
	}
	return textResult(filters.OptionsFor(snap.Dataset))
}

// ReloadDataset re-reads the source and reports the new snapshot.
func (s *InsightsServer) ReloadDataset(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.store.Reload(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reload failed: %w", err)
	}
	return textResult(snap)
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

// viewSchema is the input schema shared by all view tools.
func viewSchema() map[string]interface{} {
	date := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "format": "date", "description": desc}
	}
	list := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": desc,
		}
	}
	number := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"from":               date("First day to include, YYYY-MM-DD (optional)"),
			"to":                 date("Last day to include, YYYY-MM-DD (optional)"),
			"channels":           list("Channels to include (optional, all when empty)"),
			"campaign_types":     list("Campaign types to include, e.g. Auto or Manual (optional)"),
			"products":           list("Products to include (optional)"),
			"target_roas":        number("Target return on ad spend (optional override)"),
			"target_acos":        number("Target advertising cost of sale as a fraction (optional override)"),
			"target_cpa":         number("Target cost per order (optional override)"),
			"min_spend":          number("Spend below which a row is not judged (optional override)"),
			"flag_min_spend":     number("Spend needed before zero-order rows are flagged (optional override)"),
			"min_orders_promote": map[string]interface{}{"type": "integer", "minimum": 0, "description": "Orders needed to promote an auto search term (optional override)"},
		},
	}
}

var viewTools = []struct {
	name string
	view string
	desc string
}{
	{"executive_summary", reporting.ViewExecutive, "Spend, revenue and efficiency totals with daily ROAS trend, channel mix and channel quality"},
	{"campaign_optimization", reporting.ViewOptimization, "Campaign segmentation into Scale, Optimize, Pause and Test with recommended actions"},
	{"keyword_actions", reporting.ViewKeywords, "Keyword performance, negative keyword queue, channel bid guidance and auto search term suggestions"},
	{"sales_outcomes", reporting.ViewSales, "Orders, revenue, AOV, category and product sales with a Pareto curve"},
	{"data_quality_flags", reporting.ViewFlags, "Rows flagged for zero orders with spend or ROAS below target"},
}

func (s *InsightsServer) register(server *mcp.Server) {
	for _, t := range viewTools {
		mcp.AddTool(server, &mcp.Tool{
			Name:        t.name,
			Description: t.desc,
			InputSchema: viewSchema(),
		}, s.viewTool(t.view))
	}
	empty := map[string]interface{}{"type": "object"}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "filter_options",
		Description: "List the selectable channels, campaign types, products and date range",
		InputSchema: empty,
	}, s.FilterOptions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reload_dataset",
		Description: "Reload performance data from the configured source",
		InputSchema: empty,
	}, s.ReloadDataset)
}

func toolNames() string {
	names := make([]string, 0, len(viewTools)+2)
	for _, t := range viewTools {
		names = append(names, t.name)
	}
	names = append(names, "filter_options", "reload_dataset")
	return strings.Join(names, ",")
}
