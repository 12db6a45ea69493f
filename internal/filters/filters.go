// Package filters narrows a dataset to the operator's selection before any
// aggregation runs.
package filters

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickwarner/adinsights/internal/models"
)

// Criteria is an operator selection. An empty list means "all values" and a
// zero date leaves that end of the range open. Both date bounds are
// inclusive calendar days.
type Criteria struct {
	From          time.Time `json:"from,omitzero"`
	To            time.Time `json:"to,omitzero"`
	Channels      []string  `json:"channels,omitempty"`
	CampaignTypes []string  `json:"campaign_types,omitempty"`
	Products      []string  `json:"products,omitempty"`
}

// Options lists the values an operator can pick from.
type Options struct {
	MinDate       time.Time `json:"min_date,omitzero"`
	MaxDate       time.Time `json:"max_date,omitzero"`
	Channels      []string  `json:"channels"`
	CampaignTypes []string  `json:"campaign_types"`
	Products      []string  `json:"products"`
}

type set map[string]struct{}

func toSet(values []string) set {
	if len(values) == 0 {
		return nil
	}
	s := make(set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s set) allows(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// Apply returns the records of ds matching c. ds is not modified.
func Apply(ds models.Dataset, c Criteria) models.Dataset {
	channels := toSet(c.Channels)
	types := toSet(c.CampaignTypes)
	products := toSet(c.Products)
	from := models.Day(c.From)
	to := models.Day(c.To)

	out := make([]models.PerformanceRecord, 0, len(ds.Records))
	for _, r := range ds.Records {
		day := models.Day(r.Date)
		if !c.From.IsZero() && day.Before(from) {
			continue
		}
		if !c.To.IsZero() && day.After(to) {
			continue
		}
		if !channels.allows(r.Channel) || !types.allows(r.CampaignType) || !products.allows(r.Product) {
			continue
		}
		out = append(out, r)
	}
	return ds.WithRecords(out)
}

// Key renders c canonically so equal selections produce equal keys
// regardless of list order.
func (c Criteria) Key() string {
	var b strings.Builder
	writeDate := func(t time.Time) {
		if !t.IsZero() {
			b.WriteString(models.Day(t).Format(time.DateOnly))
		}
		b.WriteByte('|')
	}
	// values are length-prefixed so separators inside them cannot collide
	writeList := func(values []string) {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		b.WriteString(strconv.Itoa(len(sorted)))
		for _, v := range sorted {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(len(v)))
			b.WriteByte(':')
			b.WriteString(v)
		}
		b.WriteByte('|')
	}
	writeDate(c.From)
	writeDate(c.To)
	writeList(c.Channels)
	writeList(c.CampaignTypes)
	writeList(c.Products)
	return b.String()
}

// OptionsFor collects the distinct selectable values of ds, sorted, along
// with its date bounds.
func OptionsFor(ds models.Dataset) Options {
	channels, types, products := make(set), make(set), make(set)
	var opts Options
	for i, r := range ds.Records {
		day := models.Day(r.Date)
		if i == 0 || day.Before(opts.MinDate) {
			opts.MinDate = day
		}
		if i == 0 || day.After(opts.MaxDate) {
			opts.MaxDate = day
		}
		channels[r.Channel] = struct{}{}
		types[r.CampaignType] = struct{}{}
		products[r.Product] = struct{}{}
	}
	opts.Channels = channels.sorted()
	opts.CampaignTypes = types.sorted()
	opts.Products = products.sorted()
	return opts
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
