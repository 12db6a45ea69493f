package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/format"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/reporting"
)

// maxRows caps every table printed to the terminal.
const maxRows = 10

const rule = "───────────────────────────────────────────────────────────────────────────────────"

func printHeader(out io.Writer, snap *dataset.Snapshot, rows int, th models.TargetThresholds) {
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════════════════════════")
	fmt.Fprintln(out, "                              ADS PERFORMANCE REPORT")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "Source: %s (v%d, loaded %s)\n", snap.Source, snap.Version, snap.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Rows:   %d\n", rows)
	fmt.Fprintf(out, "Targets: ROAS %s | ACOS %s | CPA %s | min spend %s | flag spend %s | promote at %d orders\n\n",
		format.Float(th.TargetROAS, 2), format.Pct(th.TargetACOS, 0), format.Money(th.TargetCPA),
		format.Money(th.MinSpend), format.Money(th.FlagMinSpend), th.MinOrdersPromote)
}

func section(out io.Writer, title string) *tabwriter.Writer {
	fmt.Fprintf(out, "%s\n%s\n", title, rule)
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func endSection(tw *tabwriter.Writer, out io.Writer) {
	_ = tw.Flush()
	fmt.Fprintln(out)
}

func printView(out io.Writer, v any) {
	switch v := v.(type) {
	case *reporting.Executive:
		printExecutive(out, v)
	case *reporting.Optimization:
		printOptimization(out, v)
	case *reporting.Keywords:
		printKeywords(out, v)
	case *reporting.Sales:
		printSales(out, v)
	case *reporting.Flags:
		printFlags(out, v)
	}
}

func printExecutive(out io.Writer, e *reporting.Executive) {
	t := e.Totals
	tw := section(out, "EXECUTIVE OVERVIEW")
	fmt.Fprintf(tw, "Spend\t%s\tRevenue\t%s\n", format.K(t.Cost, true), format.K(t.Revenue, true))
	fmt.Fprintf(tw, "ROAS\t%s (%s vs target)\tACOS\t%s\n", format.Float(t.ROAS, 2), format.Delta(t.ROASDelta, 2), format.Pct(t.ACOS, 1))
	fmt.Fprintf(tw, "Orders\t%d\tCPA\t%s\n", t.Orders, format.Money(float64(t.CPA)))
	fmt.Fprintf(tw, "CTR\t%s\tCVR\t%s\n", format.Pct(t.CTR, 2), format.Pct(t.CVR, 2))
	endSection(tw, out)

	tw = section(out, "CHANNEL QUALITY")
	fmt.Fprintln(tw, "Channel\tSpend\tRevenue\tCTR\tCVR\tAction")
	for _, q := range e.Quality {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Channel, format.K(q.Cost, true), format.K(q.Revenue, true),
			format.Pct(q.CTR, 2), format.Pct(q.CVR, 2), q.Action)
	}
	fmt.Fprintf(tw, "Medians\t\t\t%s\t%s\t\n", format.Pct(e.QualityStats.CTRMedian, 2), format.Pct(e.QualityStats.CVRMedian, 2))
	endSection(tw, out)
}

func printOptimization(out io.Writer, o *reporting.Optimization) {
	tw := section(out, "CAMPAIGN SEGMENTS")
	fmt.Fprintln(tw, "Segment\tCampaigns\tSpend\tShare\tRevenue")
	for _, m := range o.SegmentMix {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", m.Segment, m.Campaigns, format.K(m.Cost, true), format.Pct(m.SpendShare, 1), format.K(m.Revenue, true))
	}
	fmt.Fprintf(tw, "Cut lines\tspend %s\teff %s\t\t\n", format.Money(o.CutLines.CostMedian), format.Float(o.CutLines.EffScoreMedian, 2))
	endSection(tw, out)

	tw = section(out, "TOP CAMPAIGN ACTIONS")
	fmt.Fprintln(tw, "Campaign\tChannel\tType\tSpend\tROAS\tSegment\tUpside\tAction")
	for _, c := range head(o.Campaigns) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Campaign, c.Channel, c.CampaignType, format.Money(c.Cost), format.Float(c.ROAS, 2),
			c.Segment, format.Money(c.Priority), c.Action)
	}
	endSection(tw, out)
}

func printKeywords(out io.Writer, k *reporting.Keywords) {
	s := k.Summary
	tw := section(out, "KEYWORDS")
	fmt.Fprintf(tw, "Keywords\t%d\tNegate candidates\t%d\n", s.Keywords, s.NegateCandidates)
	fmt.Fprintf(tw, "Avg CTR\t%s\tAvg CVR\t%s\tAvg CPC\t%s\n", format.Pct(s.AvgCTR, 2), format.Pct(s.AvgCVR, 2), format.Money(s.AvgCPC))
	endSection(tw, out)

	if len(k.NegateQueue) > 0 {
		tw = section(out, "NEGATE QUEUE")
		fmt.Fprintln(tw, "Keyword\tSpend\tOrders\tROAS\tCPA\tPriority\tReason")
		for _, n := range head(k.NegateQueue) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				n.Keyword, format.Money(n.Cost), n.Orders, format.Float(n.ROAS, 2),
				format.Money(float64(n.CPA)), format.Float(n.NegatePriority, 1), n.NegateReason)
		}
		endSection(tw, out)
	}

	tw = section(out, "CHANNEL BIDS")
	fmt.Fprintf(tw, "Avg CPC %s\tscale %d\tfix %d\t\t\t\n", format.Money(k.Bids.AvgCPC), k.Bids.ScaleChannels, k.Bids.FixChannels)
	fmt.Fprintln(tw, "Channel\tSpend\tShare\tROAS gap\tCPC gap\tAction")
	for _, b := range k.Bids.Channels {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Channel, format.Money(b.Cost), format.Pct(b.SpendShare, 1),
			format.Delta(b.ROASGap, 2), format.Delta(b.CPCGap, 2), b.Action)
	}
	endSection(tw, out)

	if len(k.AutoActions) > 0 {
		tw = section(out, "AUTO SEARCH TERMS")
		fmt.Fprintln(tw, "Campaign\tTerm\tOrders\tROAS\tImpact\tSuggestion")
		for _, a := range head(k.AutoActions) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				a.Campaign, a.Keyword, a.Orders, format.Float(a.ROAS, 2), format.Delta(a.Impact, 0), a.Suggestion)
		}
		endSection(tw, out)
	}
}

func printSales(out io.Writer, s *reporting.Sales) {
	t := s.Totals
	tw := section(out, "SALES")
	fmt.Fprintf(tw, "Revenue\t%s\tOrders\t%d\tAOV\t%s\n", format.K(t.Revenue, true), t.Orders, format.Money(t.AOV))
	checkout := format.Missing
	if t.CheckoutRate != nil {
		checkout = format.Pct(*t.CheckoutRate, 1)
	}
	fmt.Fprintf(tw, "Checkout rate\t%s\tTop-5 product share\t%s\t\t\n", checkout, format.Pct(t.TopProductShare, 1))
	endSection(tw, out)

	tw = section(out, "TOP PRODUCTS")
	fmt.Fprintln(tw, "#\tProduct\tCategory\tOrders\tRevenue\tShare")
	for i, p := range head(s.Products) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", i+1, p.Product, p.Category, p.Orders, format.K(p.Revenue, true), format.Pct(p.RevShare, 1))
	}
	endSection(tw, out)
}

func printFlags(out io.Writer, f *reporting.Flags) {
	tw := section(out, "ROW FLAGS")
	flags := make([]string, 0, len(f.Counts))
	for flag := range f.Counts {
		flags = append(flags, string(flag))
	}
	sort.Strings(flags)
	for _, flag := range flags {
		fmt.Fprintf(tw, "%s\t%d\n", flag, f.Counts[models.RowFlag(flag)])
	}
	endSection(tw, out)
}

func head[T any](rows []T) []T {
	return rows[:min(len(rows), maxRows)]
}
