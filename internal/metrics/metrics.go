package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tscbench/internal/benchmark"
	"tscbench/internal/clock"
)

// Metrics represents the collection of all Prometheus metrics
type Metrics struct {
	SamplesAccepted  prometheus.Counter
	SamplesDiscarded *prometheus.CounterVec
	RunsCompleted    prometheus.Counter
	LastAverage      prometheus.Gauge
	LastOverhead     prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the benchmark metrics and registers them with reg. A nil
// reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{gatherer: reg}

	m.SamplesAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tscbench_samples_accepted_total",
			Help: "Total number of samples counted into a run average",
		},
	)

	m.SamplesDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tscbench_samples_discarded_total",
			Help: "Total number of samples discarded, by reason",
		},
		[]string{"reason"},
	)
	// Pre-create every reason so a clean run still exports zeros.
	for _, r := range benchmark.DiscardReasons() {
		m.SamplesDiscarded.WithLabelValues(r.String())
	}

	m.RunsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tscbench_runs_completed_total",
			Help: "Total number of completed runs",
		},
	)

	m.LastAverage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tscbench_last_average_ticks",
			Help: "Average of the most recent run, overhead included",
		},
	)

	m.LastOverhead = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tscbench_last_overhead_ticks",
			Help: "Calibrated bracket overhead of the most recent run",
		},
	)

	reg.MustRegister(
		m.SamplesAccepted,
		m.SamplesDiscarded,
		m.RunsCompleted,
		m.LastAverage,
		m.LastOverhead,
	)

	return m
}

// SampleAccepted implements benchmark.Observer.
func (m *Metrics) SampleAccepted(clock.TimePoint) {
	m.SamplesAccepted.Inc()
}

// SampleDiscarded implements benchmark.Observer.
func (m *Metrics) SampleDiscarded(reason benchmark.DiscardReason) {
	m.SamplesDiscarded.WithLabelValues(reason.String()).Inc()
}

// RunCompleted implements benchmark.Observer.
func (m *Metrics) RunCompleted(r benchmark.Result) {
	m.RunsCompleted.Inc()
	m.LastAverage.Set(float64(r.Average))
	m.LastOverhead.Set(float64(r.Overhead))
}

// Handler returns the Prometheus HTTP handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ benchmark.Observer = (*Metrics)(nil)
