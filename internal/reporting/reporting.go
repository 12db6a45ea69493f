// Package reporting assembles the executive, optimization, keyword and sales
// views from a filtered dataset. Every view is plain data; rendering is left
// to the HTTP, MCP and CLI front ends.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/observability"
)

// View names accepted by Build.
const (
	ViewExecutive    = "executive"
	ViewOptimization = "optimization"
	ViewKeywords     = "keywords"
	ViewSales        = "sales"
	ViewFlags        = "flags"
)

// Views lists the dashboard views in display order.
var Views = []string{ViewExecutive, ViewOptimization, ViewKeywords, ViewSales}

// ErrUnknownView is returned by Build for an unsupported view name.
var ErrUnknownView = errors.New("unknown view")

// rollingWindow is the trailing window, in days present in the data, used
// for smoothed trend lines.
const rollingWindow = 7

// Service builds views and records how long each one takes.
type Service struct {
	logger  *zap.Logger
	metrics observability.MetricsRegistry
	tracer  trace.Tracer
}

// NewService returns a Service. Nil dependencies fall back to no-ops.
func NewService(logger *zap.Logger, metrics observability.MetricsRegistry) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Service{logger: logger, metrics: metrics, tracer: observability.Tracer("reporting")}
}

// Build dispatches to the named view.
func (s *Service) Build(ctx context.Context, view string, ds models.Dataset, th models.TargetThresholds) (any, error) {
	switch view {
	case ViewExecutive:
		return s.Executive(ctx, ds, th)
	case ViewOptimization:
		return s.Optimization(ctx, ds, th)
	case ViewKeywords:
		return s.Keywords(ctx, ds, th)
	case ViewSales:
		return s.Sales(ctx, ds, th)
	case ViewFlags:
		return s.Flags(ctx, ds, th)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
}

// Dashboard holds every view for one selection.
type Dashboard struct {
	Executive    *Executive    `json:"executive"`
	Optimization *Optimization `json:"optimization"`
	Keywords     *Keywords     `json:"keywords"`
	Sales        *Sales        `json:"sales"`
}

// All builds the four dashboard views concurrently over the same dataset.
func (s *Service) All(ctx context.Context, ds models.Dataset, th models.TargetThresholds) (*Dashboard, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Executive, err = s.Executive(gctx, ds, th)
		return err
	})
	g.Go(func() (err error) {
		d.Optimization, err = s.Optimization(gctx, ds, th)
		return err
	})
	g.Go(func() (err error) {
		d.Keywords, err = s.Keywords(gctx, ds, th)
		return err
	})
	g.Go(func() (err error) {
		d.Sales, err = s.Sales(gctx, ds, th)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// start opens a span for a view build. The returned func ends the span and
// records the build duration.
func (s *Service) start(ctx context.Context, view string, ds models.Dataset) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "reporting."+view,
		trace.WithAttributes(
			attribute.String("view", view),
			attribute.Int("rows", ds.Len()),
		))
	begin := time.Now()
	return ctx, func(err error) {
		took := time.Since(begin)
		s.metrics.RecordViewBuild(view, took)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Warn("view build failed", zap.String("view", view), zap.Error(err))
		} else {
			s.logger.Debug("view built", zap.String("view", view), zap.Int("rows", ds.Len()), zap.Duration("took", took))
		}
		span.End()
	}
}

// countLabels reports how many rows received each label.
func countLabels[L ~string](s *Service, classifier string, labels []L) map[L]int {
	counts := make(map[L]int)
	for _, l := range labels {
		counts[l]++
	}
	for l, n := range counts {
		s.metrics.AddLabels(classifier, string(l), n)
	}
	return counts
}

// rollingMean is a trailing mean over window points, defined from the first
// point on.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := max(0, i-window+1)
		var sum float64
		for _, v := range values[lo : i+1] {
			sum += v
		}
		out[i] = sum / float64(i+1-lo)
	}
	return out
}

// sortDesc sorts rows by key, highest first, keeping the original order for
// ties.
func sortDesc[T any](rows []T, key func(T) float64) {
	sort.SliceStable(rows, func(i, j int) bool { return key(rows[i]) > key(rows[j]) })
}
