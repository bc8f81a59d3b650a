package vitals

import (
	"fmt"

	"github.com/tphakala/go-bvp-vitals/internal/extrema"
	"github.com/tphakala/go-bvp-vitals/internal/features"
	"github.com/tphakala/go-bvp-vitals/internal/filter"
	"github.com/tphakala/go-bvp-vitals/internal/window"
)

// RespiratoryEstimator derives breaths per minute from 50%-overlap windows
// using the configured strategy.
type RespiratoryEstimator struct {
	*runner
	bandpass   *filter.Bandpass
	sampleRate float64
	strategy   RespiratoryStrategy
	lowCut     float64
	highCut    float64
}

// NewRespiratoryEstimator creates a respiratory-rate estimator.
func NewRespiratoryEstimator(cfg *Config) (*RespiratoryEstimator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !(cfg.SampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if err := cfg.Respiratory.Validate(); err != nil {
		return nil, err
	}
	if err := validateBand("respiratory", cfg.Respiratory.WindowSize, cfg.respiratoryFilter()); err != nil {
		return nil, err
	}

	bp, err := filter.NewBandpass(cfg.respiratoryFilter())
	if err != nil {
		return nil, fmt.Errorf("%w: respiratory band: %w", ErrInvalidConfig, err)
	}

	e := &RespiratoryEstimator{
		bandpass:   bp,
		sampleRate: cfg.SampleRate,
		strategy:   cfg.Respiratory.Strategy,
		lowCut:     cfg.Respiratory.LowCut,
		highCut:    cfg.Respiratory.HighCut,
	}
	e.runner = newRunner(MetricRespiratoryRate, cfg, cfg.Respiratory.WindowSize, window.Overlap, e.compute)
	return e, nil
}

// Metric returns MetricRespiratoryRate.
func (e *RespiratoryEstimator) Metric() Metric { return MetricRespiratoryRate }

// Strategy returns the active strategy.
func (e *RespiratoryEstimator) Strategy() RespiratoryStrategy { return e.strategy }

// Push adds one sample.
func (e *RespiratoryEstimator) Push(s Sample) { e.push(s) }

// IsReady reports whether a reading is waiting to be read.
func (e *RespiratoryEstimator) IsReady() bool { return e.isReady() }

// Read returns the pending reading and clears readiness.
func (e *RespiratoryEstimator) Read() Reading { return e.read() }

// Close stops the async worker, if any.
func (e *RespiratoryEstimator) Close() error { return e.close() }

func (e *RespiratoryEstimator) compute(snapshot []Sample) (Reading, error) {
	filtered := e.bandpass.Apply(values(snapshot))

	var (
		rate float64
		err  error
	)
	switch e.strategy {
	case RespiratorySpectral:
		rate, err = spectralRate(filtered, e.sampleRate, e.lowCut, e.highCut)
	default:
		rate = fusionRate(filtered, e.sampleRate)
	}
	return Reading{Value: rate}, err
}

// fusionRate weights AM, BW and FM of refractory-filtered extrema with the
// count-orig breath rate. Empty extrema contribute zeros.
func fusionRate(filtered []float64, sampleRate float64) float64 {
	set := extrema.DetectRefractory(filtered, sampleRate)
	mod := features.ModulationFromExtrema(filtered, set.Peaks, set.Troughs)
	count := countOrig(filtered, set.Peaks, sampleRate)

	return fusionWeightAM*mod.AM +
		fusionWeightBW*mod.BW +
		fusionWeightFM*mod.FM +
		fusionWeightCount*count
}

// countOrig counts consecutive peak pairs where both peaks exceed a fraction
// of the upper-quartile peak value, per minute of window.
func countOrig(filtered []float64, peaks []int, sampleRate float64) float64 {
	if len(filtered) == 0 {
		return 0
	}

	threshold := countThresholdFactor * features.UpperQuartile(extrema.Values(filtered, peaks))

	breaths := 0
	for i := 1; i < len(peaks); i++ {
		if filtered[peaks[i]] > threshold && filtered[peaks[i-1]] > threshold {
			breaths++
		}
	}

	minutes := float64(len(filtered)) / sampleRate / secondsPerMinute
	return float64(breaths) / minutes
}

// spectralRate weights waveform AM, BW and FM with the dominant in-band
// frequency and rejects results outside the plausible breathing range.
func spectralRate(filtered []float64, sampleRate, lowHz, highHz float64) (float64, error) {
	mod := features.ModulationFromSignal(filtered)

	var bpm float64
	if freq, ok := features.DominantFrequency(filtered, sampleRate, lowHz, highHz); ok {
		bpm = freq * secondsPerMinute
	}

	rate := spectralWeightAM*mod.AM +
		spectralWeightBW*mod.BW +
		spectralWeightFM*mod.FM +
		spectralWeightRate*bpm

	if rate < minPlausibleRespiratoryRate || rate > maxPlausibleRespiratoryRate {
		return 0, fmt.Errorf("%w: %.2f breaths/min", ErrImplausible, rate)
	}
	return rate, nil
}
