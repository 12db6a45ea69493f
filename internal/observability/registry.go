package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// so components never touch the Prometheus globals directly.
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Dataset metrics
	SetDatasetRows(rows int)
	IncrementDatasetReloads(status string)

	// Classification and view metrics
	AddLabels(classifier, label string, n int)
	RecordViewBuild(view string, duration time.Duration)

	// Cache metrics
	IncrementCacheLookups(result string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) SetDatasetRows(rows int) {
	DatasetRows.Set(float64(rows))
}

func (r *PrometheusRegistry) IncrementDatasetReloads(status string) {
	DatasetReloads.WithLabelValues(status).Inc()
}

func (r *PrometheusRegistry) AddLabels(classifier, label string, n int) {
	LabelCount.WithLabelValues(classifier, label).Add(float64(n))
}

func (r *PrometheusRegistry) RecordViewBuild(view string, duration time.Duration) {
	ViewBuildLatency.WithLabelValues(view).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementCacheLookups(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) SetDatasetRows(rows int)                                              {}
func (r *NoOpRegistry) IncrementDatasetReloads(status string)                                {}
func (r *NoOpRegistry) AddLabels(classifier, label string, n int)                            {}
func (r *NoOpRegistry) RecordViewBuild(view string, duration time.Duration)                  {}
func (r *NoOpRegistry) IncrementCacheLookups(result string)                                  {}
