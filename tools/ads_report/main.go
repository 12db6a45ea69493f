// Ads Report prints the insights dashboard for a performance dataset to the
// terminal.
//
// The data source follows the server configuration (DATA_SOURCE,
// DATA_CSV_PATH, CLICKHOUSE_DSN, POSTGRES_DSN, CHANNEL_SCALE and the TARGET_*
// variables); flags override the selection and targets for one run.
//
// Usage:
//
//	go run ./tools/ads_report -csv data/ads_performance.csv -from 2024-06-01 -channel Amazon,Google
//
// Configuration:
//
//	-csv: Optional. Read this CSV file instead of the configured source
//	-from, -to: Optional. Inclusive date range (YYYY-MM-DD)
//	-channel, -campaign-type, -product: Optional. Comma-separated selections
//	-view: Optional. One of all, executive, optimization, keywords, sales, flags (default: all)
//	-json: Optional. Print the views as JSON instead of tables
//	-target-roas, -target-acos, -target-cpa, -min-spend, -flag-min-spend, -min-orders-promote:
//	        Optional. Override the configured targets
//
// The tool exits with status 1 when the targets are invalid or the dataset
// cannot be loaded.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/config"
	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/db"
	"github.com/patrickwarner/adinsights/internal/filters"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/reporting"
)

type options struct {
	csvPath       string
	from, to      string
	channels      string
	campaignTypes string
	products      string
	view          string
	asJSON        bool
	th            models.TargetThresholds
}

func main() {
	cfg := config.Load()
	opts := options{
		th: models.TargetThresholds{
			TargetROAS:       cfg.TargetROAS,
			TargetACOS:       cfg.TargetACOS,
			TargetCPA:        cfg.TargetCPA,
			MinSpend:         cfg.MinSpend,
			FlagMinSpend:     cfg.FlagMinSpend,
			MinOrdersPromote: int64(cfg.MinOrdersPromote),
		},
	}
	flag.StringVar(&opts.csvPath, "csv", "", "CSV file to read instead of the configured source")
	flag.StringVar(&opts.from, "from", "", "First day to include (YYYY-MM-DD)")
	flag.StringVar(&opts.to, "to", "", "Last day to include (YYYY-MM-DD)")
	flag.StringVar(&opts.channels, "channel", "", "Comma-separated channels")
	flag.StringVar(&opts.campaignTypes, "campaign-type", "", "Comma-separated campaign types")
	flag.StringVar(&opts.products, "product", "", "Comma-separated products")
	flag.StringVar(&opts.view, "view", "all", "View to print: all, executive, optimization, keywords, sales or flags")
	flag.BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")
	flag.Float64Var(&opts.th.TargetROAS, "target-roas", opts.th.TargetROAS, "Target ROAS")
	flag.Float64Var(&opts.th.TargetACOS, "target-acos", opts.th.TargetACOS, "Target ACOS as a fraction")
	flag.Float64Var(&opts.th.TargetCPA, "target-cpa", opts.th.TargetCPA, "Target CPA")
	flag.Float64Var(&opts.th.MinSpend, "min-spend", opts.th.MinSpend, "Minimum spend before a row is judged")
	flag.Float64Var(&opts.th.FlagMinSpend, "flag-min-spend", opts.th.FlagMinSpend, "Spend before zero-order rows are flagged")
	flag.Int64Var(&opts.th.MinOrdersPromote, "min-orders-promote", opts.th.MinOrdersPromote, "Orders needed to promote an auto term")
	flag.Parse()

	if opts.csvPath != "" {
		cfg.DataSource = config.SourceCSV
		cfg.DataCSVPath = opts.csvPath
	}

	if err := run(context.Background(), cfg, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	if err := opts.th.Validate(); err != nil {
		return err
	}
	crit, err := opts.criteria()
	if err != nil {
		return err
	}
	scale, err := cfg.Scale()
	if err != nil {
		return err
	}
	src, closeSrc, err := db.OpenSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	// reports go to stdout; only warnings reach stderr
	logger := zap.NewNop()
	store := dataset.NewStore(src, scale, logger, nil)
	snap, err := store.Reload(ctx)
	if err != nil {
		return err
	}
	return report(ctx, reporting.NewService(logger, nil), snap, crit, opts, out)
}

// report builds the requested views over the filtered snapshot and writes
// them to out.
func report(ctx context.Context, svc *reporting.Service, snap *dataset.Snapshot, crit filters.Criteria, opts options, out io.Writer) error {
	ds := filters.Apply(snap.Dataset, crit)

	if opts.view != "all" {
		v, err := svc.Build(ctx, opts.view, ds, opts.th)
		if err != nil {
			return err
		}
		if opts.asJSON {
			return writeJSON(out, v)
		}
		printHeader(out, snap, ds.Len(), opts.th)
		printView(out, v)
		return nil
	}

	d, err := svc.All(ctx, ds, opts.th)
	if err != nil {
		return err
	}
	flags, err := svc.Flags(ctx, ds, opts.th)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeJSON(out, struct {
			*reporting.Dashboard
			Flags *reporting.Flags `json:"flags"`
		}{d, flags})
	}
	printHeader(out, snap, ds.Len(), opts.th)
	printExecutive(out, d.Executive)
	printOptimization(out, d.Optimization)
	printKeywords(out, d.Keywords)
	printSales(out, d.Sales)
	printFlags(out, flags)
	return nil
}

func (o options) criteria() (filters.Criteria, error) {
	c := filters.Criteria{
		Channels:      splitList(o.channels),
		CampaignTypes: splitList(o.campaignTypes),
		Products:      splitList(o.products),
	}
	var err error
	if o.from != "" {
		if c.From, err = time.Parse(time.DateOnly, o.from); err != nil {
			return filters.Criteria{}, fmt.Errorf("invalid -from %q: want YYYY-MM-DD", o.from)
		}
	}
	if o.to != "" {
		if c.To, err = time.Parse(time.DateOnly, o.to); err != nil {
			return filters.Criteria{}, fmt.Errorf("invalid -to %q: want YYYY-MM-DD", o.to)
		}
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return filters.Criteria{}, fmt.Errorf("-to %s is before -from %s", o.to, o.from)
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
