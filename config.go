package vitals

import (
	"fmt"
	"log/slog"

	"github.com/tphakala/go-bvp-vitals/internal/features"
	"github.com/tphakala/go-bvp-vitals/internal/filter"
)

// Config holds the pipeline configuration.
type Config struct {
	// SampleRate is the rate of the incoming BVP stream in Hz.
	SampleRate float64

	// HeartRate configures the heart-rate estimator.
	HeartRate HeartRateConfig

	// Respiratory configures the respiratory-rate estimator.
	Respiratory RespiratoryConfig

	// BloodPressure configures the blood-pressure estimator.
	BloodPressure BloodPressureConfig

	// ErrorPolicy decides whether transient compute failures are reported
	// on the Reading or masked as a plain zero.
	ErrorPolicy ErrorPolicy

	// Async moves each compute cycle off the producer onto a per-estimator
	// worker. Full windows are handed over through a bounded channel, so the
	// producer only blocks when QueueDepth snapshots are already waiting.
	Async bool

	// QueueDepth bounds the async hand-off. Zero selects a default.
	QueueDepth int

	// Logger receives debug and warning records. Nil discards them.
	Logger *slog.Logger

	// Observer, when set, is told about every compute cycle.
	Observer Observer
}

// HeartRateConfig configures the heart-rate estimator.
type HeartRateConfig struct {
	// WindowSize is the number of samples per cycle. The window is emptied
	// after every cycle; heart-rate windows never overlap.
	WindowSize int

	// LowCut and HighCut bound the cardiac band in Hz.
	LowCut  float64
	HighCut float64

	// Order is the Butterworth prototype order.
	Order int
}

// RespiratoryStrategy selects how respiratory rate is estimated.
type RespiratoryStrategy int

const (
	// RespiratoryExtremaFusion fuses AM, BW and FM measured on refractory
	// filtered peaks and troughs with a count-orig breath count.
	RespiratoryExtremaFusion RespiratoryStrategy = iota

	// RespiratorySpectral fuses waveform AM, BW and FM with the dominant
	// in-band FFT frequency and rejects implausible results.
	RespiratorySpectral
)

// String returns the strategy name used in configuration files.
func (s RespiratoryStrategy) String() string {
	switch s {
	case RespiratoryExtremaFusion:
		return "extrema-fusion"
	case RespiratorySpectral:
		return "spectral"
	default:
		return fmt.Sprintf("RespiratoryStrategy(%d)", int(s))
	}
}

// ParseRespiratoryStrategy maps a configuration name to a strategy.
func ParseRespiratoryStrategy(s string) (RespiratoryStrategy, error) {
	switch s {
	case "extrema-fusion", "fusion", "":
		return RespiratoryExtremaFusion, nil
	case "spectral":
		return RespiratorySpectral, nil
	default:
		return 0, fmt.Errorf("%w: unknown respiratory strategy %q", ErrInvalidConfig, s)
	}
}

// RespiratoryConfig configures the respiratory-rate estimator.
type RespiratoryConfig struct {
	// Strategy selects the estimation method. The two are never mixed.
	Strategy RespiratoryStrategy

	// WindowSize is the number of samples per cycle; windows overlap by 50%.
	WindowSize int

	// LowCut and HighCut bound the respiratory band in Hz.
	LowCut  float64
	HighCut float64

	// Order is the Butterworth prototype order.
	Order int
}

// RespiratoryPreset enumerates the known respiratory configurations.
type RespiratoryPreset int

const (
	// RespiratoryPresetWristband: extrema fusion over 20 s windows at 64 Hz.
	RespiratoryPresetWristband RespiratoryPreset = iota

	// RespiratoryPresetCompact: extrema fusion over 256-sample windows.
	RespiratoryPresetCompact

	// RespiratoryPresetSpectral: spectral dominant frequency over
	// 256-sample windows, tuned for 125 Hz streams.
	RespiratoryPresetSpectral
)

// GetRespiratoryPreset returns the configuration for a preset.
func GetRespiratoryPreset(preset RespiratoryPreset) RespiratoryConfig {
	cfg := RespiratoryConfig{
		Strategy:   RespiratoryExtremaFusion,
		WindowSize: wristbandRespiratoryWindow,
		LowCut:     defaultRespiratoryLow,
		HighCut:    defaultRespiratoryHigh,
		Order:      defaultRespiratoryOrder,
	}

	switch preset {
	case RespiratoryPresetCompact:
		cfg.WindowSize = compactRespiratoryWindow
	case RespiratoryPresetSpectral:
		cfg.Strategy = RespiratorySpectral
		cfg.WindowSize = spectralRespiratoryWindow
	}

	return cfg
}

// BloodPressureStrategy selects how blood pressure is estimated.
type BloodPressureStrategy int

const (
	// BloodPressureMedianPins regresses on the sum of the median peak and
	// median trough of the filtered window, with age-selected coefficients.
	BloodPressureMedianPins BloodPressureStrategy = iota

	// BloodPressureFeatureRegression applies a linear model to the full
	// feature vector, using streaming peak detection for timing features.
	BloodPressureFeatureRegression
)

// String returns the strategy name used in configuration files.
func (s BloodPressureStrategy) String() string {
	switch s {
	case BloodPressureMedianPins:
		return "median-pins"
	case BloodPressureFeatureRegression:
		return "feature-regression"
	default:
		return fmt.Sprintf("BloodPressureStrategy(%d)", int(s))
	}
}

// ParseBloodPressureStrategy maps a configuration name to a strategy.
func ParseBloodPressureStrategy(s string) (BloodPressureStrategy, error) {
	switch s {
	case "median-pins", "pins", "":
		return BloodPressureMedianPins, nil
	case "feature-regression", "features":
		return BloodPressureFeatureRegression, nil
	default:
		return 0, fmt.Errorf("%w: unknown blood pressure strategy %q", ErrInvalidConfig, s)
	}
}

// BloodPressureConfig configures the blood-pressure estimator.
type BloodPressureConfig struct {
	// Strategy selects the estimation method.
	Strategy BloodPressureStrategy

	// WindowSize is the number of samples per cycle; windows overlap by 50%.
	WindowSize int

	// LowCut and HighCut bound the pulse band in Hz.
	LowCut  float64
	HighCut float64

	// Order is the Butterworth prototype order.
	Order int

	// Age in years selects the median-pins regression. It can be changed
	// later with SetAge.
	Age int

	// Model is the feature-regression model. The zero value selects
	// DefaultFeatureModel.
	Model *FeatureModel

	// PeakThreshold is the minimum rise and fall around a streaming peak.
	PeakThreshold float64

	// PeakMinIntervalMs is the refractory interval of the streaming detector.
	PeakMinIntervalMs int64

	// SmoothWidth applies a moving average before the moment features.
	SmoothWidth int
}

// DefaultConfig returns the wristband configuration: 64 Hz input, 512-sample
// heart-rate windows, 1280-sample respiratory and blood-pressure windows.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: defaultSampleRate,
		HeartRate: HeartRateConfig{
			WindowSize: defaultHeartRateWindow,
			LowCut:     defaultHeartRateLow,
			HighCut:    defaultHeartRateHigh,
			Order:      defaultHeartRateOrder,
		},
		Respiratory: GetRespiratoryPreset(RespiratoryPresetWristband),
		BloodPressure: BloodPressureConfig{
			Strategy:          BloodPressureMedianPins,
			WindowSize:        defaultPressureWindow,
			LowCut:            defaultPressureLow,
			HighCut:           defaultPressureHigh,
			Order:             defaultPressureOrder,
			PeakThreshold:     defaultPeakThreshold,
			PeakMinIntervalMs: defaultPeakMinIntervalMs,
		},
		QueueDepth: defaultQueueDepth,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	if c.QueueDepth < 0 {
		return fmt.Errorf("%w: queue depth must not be negative", ErrInvalidConfig)
	}

	if c.ErrorPolicy != PolicyMask && c.ErrorPolicy != PolicySurface {
		return fmt.Errorf("%w: unknown error policy %d", ErrInvalidConfig, int(c.ErrorPolicy))
	}

	if err := validateBand("heart rate", c.HeartRate.WindowSize, c.heartRateFilter()); err != nil {
		return err
	}

	if err := c.Respiratory.Validate(); err != nil {
		return err
	}
	if err := validateBand("respiratory", c.Respiratory.WindowSize, c.respiratoryFilter()); err != nil {
		return err
	}

	if err := c.BloodPressure.Validate(); err != nil {
		return err
	}
	if err := validateBand("blood pressure", c.BloodPressure.WindowSize, c.pressureFilter()); err != nil {
		return err
	}

	return nil
}

// Validate checks the strategy selection.
func (r *RespiratoryConfig) Validate() error {
	switch r.Strategy {
	case RespiratoryExtremaFusion, RespiratorySpectral:
		return nil
	default:
		return fmt.Errorf("%w: unknown respiratory strategy %d", ErrInvalidConfig, int(r.Strategy))
	}
}

// Validate checks the strategy selection and the streaming detector settings.
func (b *BloodPressureConfig) Validate() error {
	switch b.Strategy {
	case BloodPressureMedianPins, BloodPressureFeatureRegression:
	default:
		return fmt.Errorf("%w: unknown blood pressure strategy %d", ErrInvalidConfig, int(b.Strategy))
	}

	if b.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrInvalidConfig)
	}

	if b.PeakThreshold < 0 || b.PeakMinIntervalMs < 0 {
		return fmt.Errorf("%w: streaming peak threshold and interval must not be negative", ErrInvalidConfig)
	}

	if b.SmoothWidth < 0 {
		return fmt.Errorf("%w: smooth width must not be negative", ErrInvalidConfig)
	}

	return nil
}

func validateBand(name string, windowSize int, params filter.FilterParams) error {
	if windowSize < minWindowSize || windowSize > maxWindowSize {
		return fmt.Errorf("%w: %s window must be %d-%d samples", ErrInvalidConfig, name, minWindowSize, maxWindowSize)
	}

	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %s band: %w", ErrInvalidConfig, name, err)
	}

	return nil
}

func (c *Config) heartRateFilter() filter.FilterParams {
	return filter.FilterParams{
		LowCut:     c.HeartRate.LowCut,
		HighCut:    c.HeartRate.HighCut,
		SampleRate: c.SampleRate,
		Order:      c.HeartRate.Order,
	}
}

func (c *Config) respiratoryFilter() filter.FilterParams {
	return filter.FilterParams{
		LowCut:     c.Respiratory.LowCut,
		HighCut:    c.Respiratory.HighCut,
		SampleRate: c.SampleRate,
		Order:      c.Respiratory.Order,
	}
}

func (c *Config) pressureFilter() filter.FilterParams {
	return filter.FilterParams{
		LowCut:     c.BloodPressure.LowCut,
		HighCut:    c.BloodPressure.HighCut,
		SampleRate: c.SampleRate,
		Order:      c.BloodPressure.Order,
	}
}

// queueDepth returns the effective async queue depth.
func (c *Config) queueDepth() int {
	if c.QueueDepth <= 0 {
		return defaultQueueDepth
	}
	return c.QueueDepth
}

// logger returns the configured logger or a discarding one.
func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// featureModel returns the configured model or the default.
func (b *BloodPressureConfig) featureModel() FeatureModel {
	if b.Model == nil {
		return DefaultFeatureModel()
	}
	return *b.Model
}

// featureVectorLen is re-exported for model construction.
const featureVectorLen = features.VectorLen
