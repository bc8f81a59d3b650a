package vitals

import (
	"fmt"

	"github.com/tphakala/go-bvp-vitals/internal/extrema"
	"github.com/tphakala/go-bvp-vitals/internal/features"
	"github.com/tphakala/go-bvp-vitals/internal/filter"
	"github.com/tphakala/go-bvp-vitals/internal/window"
)

// HeartRateEstimator derives beats per minute from non-overlapping windows.
type HeartRateEstimator struct {
	*runner
	bandpass   *filter.Bandpass
	sampleRate float64
}

// NewHeartRateEstimator creates a heart-rate estimator. Invalid band or
// window settings fail here, never at compute time.
func NewHeartRateEstimator(cfg *Config) (*HeartRateEstimator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !(cfg.SampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if err := validateBand("heart rate", cfg.HeartRate.WindowSize, cfg.heartRateFilter()); err != nil {
		return nil, err
	}

	bp, err := filter.NewBandpass(cfg.heartRateFilter())
	if err != nil {
		return nil, fmt.Errorf("%w: heart rate band: %w", ErrInvalidConfig, err)
	}

	e := &HeartRateEstimator{bandpass: bp, sampleRate: cfg.SampleRate}
	e.runner = newRunner(MetricHeartRate, cfg, cfg.HeartRate.WindowSize, window.Reset, e.compute)
	return e, nil
}

// Metric returns MetricHeartRate.
func (e *HeartRateEstimator) Metric() Metric { return MetricHeartRate }

// Push adds one sample.
func (e *HeartRateEstimator) Push(s Sample) { e.push(s) }

// IsReady reports whether a reading is waiting to be read.
func (e *HeartRateEstimator) IsReady() bool { return e.isReady() }

// Read returns the pending reading and clears readiness.
func (e *HeartRateEstimator) Read() Reading { return e.read() }

// Close stops the async worker, if any.
func (e *HeartRateEstimator) Close() error { return e.close() }

func (e *HeartRateEstimator) compute(snapshot []Sample) (Reading, error) {
	filtered := e.bandpass.Apply(values(snapshot))
	bpm, err := heartRate(filtered, e.sampleRate)
	return Reading{Value: bpm}, err
}

// heartRate converts the mean interval between positive peaks into BPM.
func heartRate(filtered []float64, sampleRate float64) (float64, error) {
	peaks := extrema.PositivePeaks(filtered)
	if len(peaks) < 2 {
		return 0, fmt.Errorf("%w: %d peaks", ErrInsufficientData, len(peaks))
	}

	bpm := features.RateFromMeanInterval(sampleRate, features.MeanInterval(peaks))
	if bpm == 0 {
		return 0, fmt.Errorf("%w: zero peak interval", ErrInsufficientData)
	}
	return bpm, nil
}
