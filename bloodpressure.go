package vitals

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-bvp-vitals/internal/extrema"
	"github.com/tphakala/go-bvp-vitals/internal/features"
	"github.com/tphakala/go-bvp-vitals/internal/filter"
	"github.com/tphakala/go-bvp-vitals/internal/window"
)

// Regression maps the PIN sum (median peak + median trough) to pressures.
type Regression struct {
	SystolicSlope      float64
	SystolicIntercept  float64
	DiastolicSlope     float64
	DiastolicIntercept float64
}

var (
	// RegressionAge20to40 applies to ages 20 through 40 inclusive.
	RegressionAge20to40 = Regression{
		SystolicSlope:      0.80,
		SystolicIntercept:  105.79,
		DiastolicSlope:     0.17,
		DiastolicIntercept: 76.60,
	}

	// RegressionAllAges applies to every other age.
	RegressionAllAges = Regression{
		SystolicSlope:      -0.41,
		SystolicIntercept:  115.61,
		DiastolicSlope:     0.75,
		DiastolicIntercept: 74.66,
	}
)

// RegressionForAge selects the coefficient set for an age in years.
func RegressionForAge(age int) Regression {
	if age >= youngAdultMinAge && age <= youngAdultMaxAge {
		return RegressionAge20to40
	}
	return RegressionAllAges
}

// Apply returns systolic and diastolic pressure for a PIN sum.
func (r Regression) Apply(pinSum float64) (systolic, diastolic float64) {
	return r.SystolicSlope*pinSum + r.SystolicIntercept,
		r.DiastolicSlope*pinSum + r.DiastolicIntercept
}

// LinearModel is an intercept plus one weight per feature-vector entry.
type LinearModel struct {
	Intercept float64
	Weights   [featureVectorLen]float64
}

// Predict evaluates the model on a flattened feature vector.
func (m *LinearModel) Predict(v []float64) float64 {
	return m.Intercept + floats.Dot(m.Weights[:], v)
}

// FeatureModel holds the systolic and diastolic models.
type FeatureModel struct {
	Systolic  LinearModel
	Diastolic LinearModel
}

// Feature vector positions used by the default model.
const (
	featureIndexPTT       = 5
	featureIndexHeartRate = 6
)

// DefaultFeatureModel returns an uncalibrated model driven by heart rate and
// pulse transit time.
func DefaultFeatureModel() FeatureModel {
	var m FeatureModel

	m.Systolic.Intercept = 80
	m.Systolic.Weights[featureIndexHeartRate] = 0.5
	m.Systolic.Weights[featureIndexPTT] = -10

	m.Diastolic.Intercept = 55
	m.Diastolic.Weights[featureIndexHeartRate] = 0.25
	m.Diastolic.Weights[featureIndexPTT] = -5

	return m
}

// BloodPressureEstimator derives systolic and diastolic pressure from
// 50%-overlap windows.
type BloodPressureEstimator struct {
	*runner
	bandpass   *filter.Bandpass
	sampleRate float64
	strategy   BloodPressureStrategy
	model      FeatureModel
	detector   *extrema.Detector
	smooth     int
	age        atomic.Int64
}

// NewBloodPressureEstimator creates a blood-pressure estimator.
func NewBloodPressureEstimator(cfg *Config) (*BloodPressureEstimator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !(cfg.SampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if err := cfg.BloodPressure.Validate(); err != nil {
		return nil, err
	}
	if err := validateBand("blood pressure", cfg.BloodPressure.WindowSize, cfg.pressureFilter()); err != nil {
		return nil, err
	}

	bp, err := filter.NewBandpass(cfg.pressureFilter())
	if err != nil {
		return nil, fmt.Errorf("%w: blood pressure band: %w", ErrInvalidConfig, err)
	}

	e := &BloodPressureEstimator{
		bandpass:   bp,
		sampleRate: cfg.SampleRate,
		strategy:   cfg.BloodPressure.Strategy,
		model:      cfg.BloodPressure.featureModel(),
		detector:   extrema.NewDetector(cfg.BloodPressure.PeakThreshold, cfg.BloodPressure.PeakMinIntervalMs),
		smooth:     cfg.BloodPressure.SmoothWidth,
	}
	e.age.Store(int64(cfg.BloodPressure.Age))
	e.runner = newRunner(MetricBloodPressure, cfg, cfg.BloodPressure.WindowSize, window.Overlap, e.compute)
	return e, nil
}

// Metric returns MetricBloodPressure.
func (e *BloodPressureEstimator) Metric() Metric { return MetricBloodPressure }

// Strategy returns the active strategy.
func (e *BloodPressureEstimator) Strategy() BloodPressureStrategy { return e.strategy }

// SetAge changes the age used to select the regression. It takes effect at
// the next compute cycle.
func (e *BloodPressureEstimator) SetAge(age int) { e.age.Store(int64(age)) }

// Age returns the current age in years.
func (e *BloodPressureEstimator) Age() int { return int(e.age.Load()) }

// Push adds one sample.
func (e *BloodPressureEstimator) Push(s Sample) { e.push(s) }

// IsReady reports whether a reading is waiting to be read.
func (e *BloodPressureEstimator) IsReady() bool { return e.isReady() }

// Read returns the pending reading and clears readiness.
func (e *BloodPressureEstimator) Read() Reading { return e.read() }

// Close stops the async worker, if any.
func (e *BloodPressureEstimator) Close() error { return e.close() }

func (e *BloodPressureEstimator) compute(snapshot []Sample) (Reading, error) {
	raw := values(snapshot)
	filtered := e.bandpass.Apply(raw)

	var sys, dia float64
	switch e.strategy {
	case BloodPressureFeatureRegression:
		vec := e.featureVector(snapshot, raw, filtered)
		sys, dia = e.model.Systolic.Predict(vec), e.model.Diastolic.Predict(vec)
	default:
		sys, dia = RegressionForAge(e.Age()).Apply(pinSum(filtered))
	}

	return Reading{Systolic: sys, Diastolic: dia}, nil
}

// pinSum returns median peak plus median trough of the strict extrema. Empty
// extrema sets contribute 0.
func pinSum(filtered []float64) float64 {
	set := extrema.Detect(filtered)
	return features.Median(extrema.Values(filtered, set.Peaks)) +
		features.Median(extrema.Values(filtered, set.Troughs))
}

// featureVector runs the streaming peak detector over the filtered window
// for timing features and extracts the full vector.
func (e *BloodPressureEstimator) featureVector(snapshot []Sample, raw, filtered []float64) []float64 {
	times := timestamps(snapshot, e.sampleRate)

	e.detector.Reset()
	for i, v := range filtered {
		e.detector.Push(v, times[i])
	}

	set := extrema.Detect(filtered)
	vec := features.Extract(features.Input{
		Filtered:    filtered,
		Raw:         raw,
		Peaks:       set.Peaks,
		Troughs:     set.Troughs,
		PeakTimesMs: e.detector.PeakTimestamps(),
		SmoothWidth: e.smooth,
	})
	return vec.Slice()
}
