package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adinsights_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adinsights_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// rows in the active dataset snapshot
	DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "adinsights_dataset_rows",
			Help: "Number of performance rows in the active snapshot",
		},
	)

	// dataset reloads labelled by outcome
	DatasetReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adinsights_dataset_reloads_total",
			Help: "Total dataset reload attempts",
		},
		[]string{"status"},
	)

	// labels assigned per classifier
	LabelCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adinsights_labels_total",
			Help: "Total action labels assigned",
		},
		[]string{"classifier", "label"},
	)

	// time spent building a view
	ViewBuildLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adinsights_view_build_seconds",
			Help:    "Histogram of view build durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	// view cache lookups labelled hit/miss/error
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adinsights_cache_lookups_total",
			Help: "Total view cache lookups",
		},
		[]string{"result"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		DatasetRows,
		DatasetReloads,
		LabelCount,
		ViewBuildLatency,
		CacheLookups,
	)
}
