package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/patrickwarner/adinsights/internal/aggregate"
	"github.com/patrickwarner/adinsights/internal/kpi"
	"github.com/patrickwarner/adinsights/internal/models"
)

// topProducts is how many products count toward the concentration KPI.
const topProducts = 5

// SalesTotals are the headline sales KPIs. CheckoutRate is nil when the
// dataset has no add-to-cart counts.
type SalesTotals struct {
	Revenue         float64  `json:"revenue"`
	Orders          int64    `json:"orders"`
	AOV             float64  `json:"aov"`
	CheckoutRate    *float64 `json:"checkout_rate,omitempty"`
	TopProductShare float64  `json:"top_product_share"`
}

// SalesDay is one day of order volume and basket value.
type SalesDay struct {
	Date     time.Time `json:"date"`
	Orders   int64     `json:"orders"`
	Revenue  float64   `json:"revenue"`
	AOV      float64   `json:"aov"`
	Orders7d float64   `json:"orders_7d"`
}

// CategorySales is revenue and basket value for one category.
type CategorySales struct {
	Category string  `json:"category"`
	Orders   int64   `json:"orders"`
	Revenue  float64 `json:"revenue"`
	AOV      float64 `json:"aov"`
}

// ProductSales is one product's contribution to revenue.
type ProductSales struct {
	Product  string  `json:"product"`
	Category string  `json:"category"`
	Orders   int64   `json:"orders"`
	Revenue  float64 `json:"revenue"`
	RevShare float64 `json:"rev_share"`
}

// ParetoPoint is one step of the cumulative revenue curve.
type ParetoPoint struct {
	Rank        int     `json:"rank"`
	Product     string  `json:"product"`
	Revenue     float64 `json:"revenue"`
	CumRevShare float64 `json:"cum_rev_share"`
}

// Sales is the sales outcomes page.
type Sales struct {
	Totals     SalesTotals     `json:"totals"`
	Daily      []SalesDay      `json:"daily"`
	Categories []CategorySales `json:"categories"`
	Products   []ProductSales  `json:"products"`
	Pareto     []ParetoPoint   `json:"pareto"`
}

// Sales builds order, basket and product concentration figures for ds.
func (s *Service) Sales(ctx context.Context, ds models.Dataset, th models.TargetThresholds) (_ *Sales, err error) {
	_, done := s.start(ctx, ViewSales, ds)
	defer func() { done(err) }()

	if err := th.Validate(); err != nil {
		return nil, err
	}

	total := aggregate.Total(ds)
	view := &Sales{
		Totals: SalesTotals{
			Revenue: total.Revenue,
			Orders:  total.Orders,
			AOV:     kpi.Div(total.Revenue, float64(total.Orders), 0),
		},
	}
	if ds.HasAddToCart {
		rate := kpi.Div(float64(total.Orders), float64(total.AddToCart), 0)
		view.Totals.CheckoutRate = &rate
	}

	days, err := aggregate.By(ds, models.DimDate)
	if err != nil {
		return nil, err
	}
	view.Daily = salesDays(days)

	categories, err := aggregate.By(ds, models.DimCategory)
	if err != nil {
		return nil, err
	}
	sortDesc(categories, func(r models.AggregateRow) float64 { return r.Revenue })
	view.Categories = make([]CategorySales, len(categories))
	for i, c := range categories {
		view.Categories[i] = CategorySales{
			Category: c.Category,
			Orders:   c.Orders,
			Revenue:  c.Revenue,
			AOV:      kpi.Div(c.Revenue, float64(c.Orders), 0),
		}
	}

	products, err := aggregate.By(ds, models.DimProduct, models.DimCategory)
	if err != nil {
		return nil, err
	}
	view.Products, view.Pareto = productSales(products, total.Revenue)
	for i := 0; i < len(view.Products) && i < topProducts; i++ {
		view.Totals.TopProductShare += view.Products[i].RevShare
	}
	return view, nil
}

func salesDays(days []models.AggregateRow) []SalesDay {
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	orders := make([]float64, len(days))
	for i, d := range days {
		orders[i] = float64(d.Orders)
	}
	smoothed := rollingMean(orders, rollingWindow)

	out := make([]SalesDay, len(days))
	for i, d := range days {
		out[i] = SalesDay{
			Date:     d.Date,
			Orders:   d.Orders,
			Revenue:  d.Revenue,
			AOV:      kpi.Div(d.Revenue, float64(d.Orders), 0),
			Orders7d: smoothed[i],
		}
	}
	return out
}

// productSales ranks products by revenue and derives the Pareto curve from
// the same ranking.
func productSales(rows []models.AggregateRow, totalRevenue float64) ([]ProductSales, []ParetoPoint) {
	sortDesc(rows, func(r models.AggregateRow) float64 { return r.Revenue })
	products := make([]ProductSales, len(rows))
	pareto := make([]ParetoPoint, len(rows))
	var cum float64
	for i, r := range rows {
		share := kpi.Div(r.Revenue, totalRevenue, 0)
		cum += r.Revenue
		products[i] = ProductSales{
			Product:  r.Product,
			Category: r.Category,
			Orders:   r.Orders,
			Revenue:  r.Revenue,
			RevShare: share,
		}
		pareto[i] = ParetoPoint{
			Rank:        i + 1,
			Product:     r.Product,
			Revenue:     r.Revenue,
			CumRevShare: kpi.Div(cum, totalRevenue, 0),
		}
	}
	return products, pareto
}
