// Package telemetry exports compute-cycle metrics to Prometheus.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vitals "github.com/tphakala/go-bvp-vitals"
)

const namespace = "bvp"

// Metrics implements vitals.Observer. A nil *Metrics ignores every call.
type Metrics struct {
	gatherer  prometheus.Gatherer
	cycles    *prometheus.CounterVec
	degraded  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	value     *prometheus.GaugeVec
	systolic  prometheus.Gauge
	diastolic prometheus.Gauge
}

// NewMetrics registers the collectors on reg. A nil reg selects a private
// registry, so several pipelines in one process (or test) never collide.
// Handler serves reg when it is also a Gatherer (as *prometheus.Registry is)
// and the default gatherer otherwise.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		private := prometheus.NewRegistry()
		reg, gatherer = private, private
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		gatherer: gatherer,
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compute_cycles_total",
			Help:      "Total compute cycles by estimator.",
		}, []string{"estimator"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_cycles_total",
			Help:      "Compute cycles that produced a zero reading, by estimator and error class.",
		}, []string{"estimator", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Histogram of compute cycle durations by estimator.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"estimator"}),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_per_minute",
			Help:      "Latest heart or respiratory rate per minute.",
		}, []string{"estimator"}),
		systolic: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "systolic_mmhg",
			Help:      "Latest systolic blood pressure estimate.",
		}),
		diastolic: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diastolic_mmhg",
			Help:      "Latest diastolic blood pressure estimate.",
		}),
	}

	reg.MustRegister(
		m.cycles,
		m.degraded,
		m.duration,
		m.value,
		m.systolic,
		m.diastolic,
	)

	return m
}

// ObserveCycle records one compute cycle.
func (m *Metrics) ObserveCycle(report vitals.CycleReport) {
	if m == nil {
		return
	}

	name := report.Reading.Metric.String()
	m.cycles.WithLabelValues(name).Inc()
	m.duration.WithLabelValues(name).Observe(report.Duration.Seconds())

	if report.Class != vitals.ClassNone {
		m.degraded.WithLabelValues(name, report.Class.String()).Inc()
	}

	switch report.Reading.Metric {
	case vitals.MetricBloodPressure:
		m.systolic.Set(report.Reading.Systolic)
		m.diastolic.Set(report.Reading.Diastolic)
	default:
		m.value.WithLabelValues(name).Set(report.Reading.Value)
	}
}

// Gatherer returns the gatherer Handler serves.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
