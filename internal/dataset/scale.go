package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/patrickwarner/adinsights/internal/models"
)

// ChannelScale multiplies a channel's volumes and values. Channels that are
// not listed keep a factor of 1.
type ChannelScale map[string]float64

// DemoChannelScale skews the bundled sample data so that spend and revenue
// concentrate on a few channels.
var DemoChannelScale = ChannelScale{
	"Amazon":   1.85,
	"Google":   1.20,
	"Facebook": 0.72,
	"TikTok":   0.38,
}

// ParseChannelScale reads "Amazon=1.85,Google=1.2". An empty string yields a
// nil scale.
func ParseChannelScale(s string) (ChannelScale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := make(ChannelScale)
	for _, part := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("channel scale %q: expected channel=factor", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("channel scale %q: invalid factor", part)
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, nil
}

// String renders the scale in the format ParseChannelScale accepts.
func (cs ChannelScale) String() string {
	names := make([]string, 0, len(cs))
	for n := range cs {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + strconv.FormatFloat(cs[n], 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Apply returns a scaled copy of ds. Counts are rounded to whole numbers and
// money is rounded to cents; everything stays non-negative.
func (cs ChannelScale) Apply(ds models.Dataset) models.Dataset {
	if len(cs) == 0 {
		return ds
	}
	out := make([]models.PerformanceRecord, len(ds.Records))
	for i, r := range ds.Records {
		f, ok := cs[r.Channel]
		if !ok {
			f = 1
		}
		r.Impressions = scaleCount(r.Impressions, f)
		r.Clicks = scaleCount(r.Clicks, f)
		r.AddToCart = scaleCount(r.AddToCart, f)
		r.Orders = scaleCount(r.Orders, f)
		r.Cost = math.Round(r.Cost*f*100) / 100
		r.Revenue = math.Round(r.Revenue*f*100) / 100
		r.Clip()
		out[i] = r
	}
	return ds.WithRecords(out)
}

func scaleCount(v int64, f float64) int64 {
	return int64(math.RoundToEven(float64(v) * f))
}
