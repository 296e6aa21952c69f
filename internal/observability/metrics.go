package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cloudweather"

// Metrics holds the Prometheus collectors shared by the observation and report services.
type Metrics struct {
	ReportsBuilt   prometheus.Counter
	ReportCache    *prometheus.CounterVec // labels: result={hit,miss}
	ReportFailures *prometheus.CounterVec // labels: kind={invalid_range,upstream,no_data,persistence,canceled,other}

	UpstreamFetchDuration *prometheus.HistogramVec // labels: source, outcome={success,error}

	ObservationsWritten *prometheus.CounterVec // labels: domain
	ObservationsServed  *prometheus.CounterVec // labels: domain

	WarmRuns prometheus.Counter
}

// NewMetrics creates all collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_built_total",
			Help:      "Total weather reports aggregated and stored.",
		}),
		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
		ReportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_failures_total",
			Help:      "Failed report builds by error kind.",
		}, []string{"kind"}),
		UpstreamFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Observation source request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source", "outcome"}),
		ObservationsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_written_total",
			Help:      "Observations accepted by POST /observation.",
		}, []string{"domain"}),
		ObservationsServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_served_total",
			Help:      "Observations returned by GET /observation.",
		}, []string{"domain"}),
		WarmRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_warm_runs_total",
			Help:      "Completed scheduled report warming runs.",
		}),
	}

	reg.MustRegister(
		m.ReportsBuilt,
		m.ReportCache,
		m.ReportFailures,
		m.UpstreamFetchDuration,
		m.ObservationsWritten,
		m.ObservationsServed,
		m.WarmRuns,
	)

	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
