package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vitals "github.com/tphakala/go-bvp-vitals"
)

func TestObserveCycle(t *testing.T) {
	m := NewMetrics(nil)

	m.ObserveCycle(vitals.CycleReport{
		Reading:  vitals.Reading{Metric: vitals.MetricHeartRate, Value: 72},
		Duration: time.Millisecond,
	})
	m.ObserveCycle(vitals.CycleReport{
		Reading:  vitals.Reading{Metric: vitals.MetricHeartRate},
		Class:    vitals.ClassTransient,
		Err:      errors.New("boom"),
		Duration: time.Millisecond,
	})
	m.ObserveCycle(vitals.CycleReport{
		Reading: vitals.Reading{Metric: vitals.MetricBloodPressure, Systolic: 118, Diastolic: 79},
	})

	assert.InDelta(t, 2, testutil.ToFloat64(m.cycles.WithLabelValues("heart_rate")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.degraded.WithLabelValues("heart_rate", "transient")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.value.WithLabelValues("heart_rate")), 0, "latest cycle wins")
	assert.InDelta(t, 118, testutil.ToFloat64(m.systolic), 0)
	assert.InDelta(t, 79, testutil.ToFloat64(m.diastolic), 0)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCycle(vitals.CycleReport{})
	})
}

func TestHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.ObserveCycle(vitals.CycleReport{
		Reading: vitals.Reading{Metric: vitals.MetricRespiratoryRate, Value: 15},
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bvp_rate_per_minute{estimator="respiratory_rate"} 15`)
	assert.Contains(t, rec.Body.String(), "bvp_compute_cycles_total")
}

func TestNewMetrics_CallerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	assert.Same(t, reg, m.Gatherer())

	m.ObserveCycle(vitals.CycleReport{
		Reading: vitals.Reading{Metric: vitals.MetricHeartRate, Value: 72},
	})

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "bvp_compute_cycles_total")
	assert.Contains(t, names, "bvp_rate_per_minute")

	// The same collectors cannot be registered twice on one registry.
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestPipelineObserver(t *testing.T) {
	m := NewMetrics(nil)
	cfg := vitals.DefaultConfig()
	cfg.HeartRate.WindowSize = 16
	cfg.Observer = m

	p, err := vitals.NewPipeline(cfg)
	require.NoError(t, err)
	defer p.Close()

	for range 32 {
		p.OnSample(0, 0)
	}
	assert.InDelta(t, 2, testutil.ToFloat64(m.cycles.WithLabelValues("heart_rate")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.degraded.WithLabelValues("heart_rate", "degenerate")), 0)
}
