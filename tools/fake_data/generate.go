package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/patrickwarner/adinsights/internal/models"
)

type channelProfile struct {
	name string
	ctr  float64 // clicks per impression
	cvr  float64 // orders per click
	cpc  float64
	// reach scales daily impressions per keyword
	reach float64
}

type product struct {
	name     string
	category string
	price    float64
	keywords []string
}

var channels = []channelProfile{
	{name: "Amazon", ctr: 0.035, cvr: 0.11, cpc: 0.85, reach: 1.4},
	{name: "Google", ctr: 0.045, cvr: 0.06, cpc: 1.20, reach: 1.0},
	{name: "Facebook", ctr: 0.012, cvr: 0.03, cpc: 0.65, reach: 1.8},
	{name: "TikTok", ctr: 0.009, cvr: 0.015, cpc: 0.45, reach: 2.2},
}

var products = []product{
	{"Ceramic Mug", "Kitchen", 18.9, []string{"coffee mug", "ceramic mug", "mug gift"}},
	{"Pour Over Kettle", "Kitchen", 54.0, []string{"gooseneck kettle", "pour over kettle"}},
	{"Desk Lamp", "Home", 39.5, []string{"desk lamp", "led lamp", "reading light"}},
	{"Linen Throw", "Home", 72.0, []string{"linen blanket", "throw blanket"}},
	{"Yoga Mat", "Fitness", 29.9, []string{"yoga mat", "non slip mat", "exercise mat"}},
	{"Kettlebell 12kg", "Fitness", 45.0, []string{"kettlebell", "home gym"}},
	{"Trail Bottle", "Outdoor", 22.5, []string{"water bottle", "insulated bottle"}},
	{"Camp Chair", "Outdoor", 64.0, []string{"camping chair", "folding chair"}},
}

// genOptions controls the synthetic dataset.
type genOptions struct {
	start   time.Time
	days    int
	fill    float64 // share of keyword/day combinations that deliver
	withATC bool
}

// generate builds a deterministic dataset for r. Every channel runs an auto
// and a manual campaign per product; each keyword has its own efficiency so
// winners, wasters and zero-order rows all appear.
func generate(r *rand.Rand, o genOptions) models.Dataset {
	type line struct {
		ch      channelProfile
		p       product
		kind    string
		keyword string
		quality float64
	}
	var lines []line
	for _, ch := range channels {
		for _, p := range products {
			for _, kind := range []string{models.CampaignTypeAuto, models.CampaignTypeManual} {
				for _, kw := range p.keywords {
					lines = append(lines, line{
						ch:      ch,
						p:       p,
						kind:    kind,
						keyword: kw,
						// log-normal spread so a few keywords dominate
						quality: math.Exp(r.NormFloat64() * 0.6),
					})
				}
			}
		}
	}

	ds := models.Dataset{HasAddToCart: o.withATC}
	for d := range o.days {
		date := o.start.AddDate(0, 0, d)
		// weekends convert a little better
		weekday := 1.0
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekday = 1.15
		}
		for _, l := range lines {
			if r.Float64() > o.fill {
				continue
			}
			impressions := int64(math.Round(float64(200+r.Intn(1800)) * l.ch.reach))
			clicks := draw(r, impressions, l.ch.ctr*jitter(r, 0.3))
			orders := draw(r, clicks, l.ch.cvr*l.quality*weekday*jitter(r, 0.4))
			atc := orders
			if o.withATC && clicks > orders {
				atc = orders + draw(r, clicks-orders, 0.15)
			}
			cpc := l.ch.cpc * jitter(r, 0.25)
			if l.kind == models.CampaignTypeAuto {
				cpc *= 0.85
			}
			rec := models.PerformanceRecord{
				Date:         date,
				Channel:      l.ch.name,
				Campaign:     campaignName(l.ch.name, l.p, l.kind),
				CampaignType: l.kind,
				Product:      l.p.name,
				Category:     l.p.category,
				Keyword:      l.keyword,
				Volume: models.Volume{
					Impressions: impressions,
					Clicks:      clicks,
					Orders:      orders,
					Cost:        round2(float64(clicks) * cpc),
					Revenue:     round2(float64(orders) * l.p.price * jitter(r, 0.1)),
				},
			}
			if o.withATC {
				rec.AddToCart = atc
			}
			ds.Records = append(ds.Records, rec)
		}
	}
	return ds
}

func campaignName(channel string, p product, kind string) string {
	return fmt.Sprintf("%s | %s | %s", channel, p.category, kind)
}

// draw approximates a binomial draw of n trials with probability p.
func draw(r *rand.Rand, n int64, p float64) int64 {
	if n <= 0 || p <= 0 {
		return 0
	}
	p = min(p, 1)
	mean := float64(n) * p
	sd := math.Sqrt(mean * (1 - p))
	v := int64(math.Round(mean + r.NormFloat64()*sd))
	return max(0, min(n, v))
}

// jitter returns a multiplier in [1-spread, 1+spread].
func jitter(r *rand.Rand, spread float64) float64 {
	return 1 + (r.Float64()*2-1)*spread
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// writeCSV writes ds with the header every source reads.
func writeCSV(w io.Writer, ds models.Dataset) error {
	header := []string{
		models.ColDate, models.ColChannel, models.ColCampaign, models.ColCampaignType,
		models.ColProduct, models.ColCategory, models.ColKeyword, models.ColImpressions, models.ColClicks,
	}
	if ds.HasAddToCart {
		header = append(header, models.ColAddToCart)
	}
	header = append(header, models.ColOrders, models.ColCost, models.ColRevenue)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range ds.Records {
		row := []string{
			r.Date.Format(time.DateOnly), r.Channel, r.Campaign, r.CampaignType,
			r.Product, r.Category, r.Keyword,
			strconv.FormatInt(r.Impressions, 10), strconv.FormatInt(r.Clicks, 10),
		}
		if ds.HasAddToCart {
			row = append(row, strconv.FormatInt(r.AddToCart, 10))
		}
		row = append(row,
			strconv.FormatInt(r.Orders, 10),
			strconv.FormatFloat(r.Cost, 'f', 2, 64),
			strconv.FormatFloat(r.Revenue, 'f', 2, 64))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
