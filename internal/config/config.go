// Package config loads a YAML run configuration for the command-line tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	vitals "github.com/tphakala/go-bvp-vitals"
)

// File is the on-disk layout. Missing keys keep the library defaults.
type File struct {
	SampleRate    float64            `yaml:"sample_rate"`
	ErrorPolicy   string             `yaml:"error_policy"`
	Async         bool               `yaml:"async"`
	QueueDepth    int                `yaml:"queue_depth"`
	HeartRate     HeartRateSection   `yaml:"heart_rate"`
	Respiratory   RespiratorySection `yaml:"respiratory"`
	BloodPressure PressureSection    `yaml:"blood_pressure"`
	MQTT          MQTTSection        `yaml:"mqtt"`
	HTTP          HTTPSection        `yaml:"http"`
	Recording     RecordingSection   `yaml:"recording"`
}

// Band is a band-pass setting.
type Band struct {
	Window  int     `yaml:"window"`
	LowCut  float64 `yaml:"low_cut"`
	HighCut float64 `yaml:"high_cut"`
	Order   int     `yaml:"order"`
}

// HeartRateSection configures the heart-rate estimator.
type HeartRateSection struct {
	Band `yaml:",inline"`
}

// RespiratorySection configures the respiratory estimator. Preset, when set,
// is applied before the explicit band values.
type RespiratorySection struct {
	Preset   string `yaml:"preset"`
	Strategy string `yaml:"strategy"`
	Band     `yaml:",inline"`
}

// PressureSection configures the blood-pressure estimator.
type PressureSection struct {
	Strategy          string  `yaml:"strategy"`
	Age               int     `yaml:"age"`
	PeakThreshold     float64 `yaml:"peak_threshold"`
	PeakMinIntervalMs int64   `yaml:"peak_min_interval_ms"`
	SmoothWidth       int     `yaml:"smooth_width"`
	Band              `yaml:",inline"`
}

// MQTTSection configures the optional publisher.
type MQTTSection struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// HTTPSection configures the optional status server.
type HTTPSection struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RecordingSection describes how WAV recordings map to sensor values.
type RecordingSection struct {
	FullScale float64 `yaml:"full_scale"`
	Realtime  bool    `yaml:"realtime"`
}

// Load reads and parses path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", vitals.ErrInvalidConfig, err)
	}
	return &f, nil
}

// Vitals builds and validates the library configuration.
func (f *File) Vitals() (*vitals.Config, error) {
	cfg := vitals.DefaultConfig()

	if f.SampleRate != 0 {
		cfg.SampleRate = f.SampleRate
	}
	policy, err := vitals.ParseErrorPolicy(f.ErrorPolicy)
	if err != nil {
		return nil, err
	}
	cfg.ErrorPolicy = policy
	cfg.Async = f.Async
	if f.QueueDepth != 0 {
		cfg.QueueDepth = f.QueueDepth
	}

	applyBand(&cfg.HeartRate.WindowSize, &cfg.HeartRate.LowCut, &cfg.HeartRate.HighCut, &cfg.HeartRate.Order, f.HeartRate.Band)

	if f.Respiratory.Preset != "" {
		preset, err := parsePreset(f.Respiratory.Preset)
		if err != nil {
			return nil, err
		}
		cfg.Respiratory = vitals.GetRespiratoryPreset(preset)
	}
	if f.Respiratory.Strategy != "" {
		s, err := vitals.ParseRespiratoryStrategy(f.Respiratory.Strategy)
		if err != nil {
			return nil, err
		}
		cfg.Respiratory.Strategy = s
	}
	r := &cfg.Respiratory
	applyBand(&r.WindowSize, &r.LowCut, &r.HighCut, &r.Order, f.Respiratory.Band)

	bp := &cfg.BloodPressure
	strategy, err := vitals.ParseBloodPressureStrategy(f.BloodPressure.Strategy)
	if err != nil {
		return nil, err
	}
	bp.Strategy = strategy
	bp.Age = f.BloodPressure.Age
	bp.SmoothWidth = f.BloodPressure.SmoothWidth
	if f.BloodPressure.PeakThreshold != 0 {
		bp.PeakThreshold = f.BloodPressure.PeakThreshold
	}
	if f.BloodPressure.PeakMinIntervalMs != 0 {
		bp.PeakMinIntervalMs = f.BloodPressure.PeakMinIntervalMs
	}
	applyBand(&bp.WindowSize, &bp.LowCut, &bp.HighCut, &bp.Order, f.BloodPressure.Band)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyBand(window *int, low, high *float64, order *int, b Band) {
	if b.Window != 0 {
		*window = b.Window
	}
	if b.LowCut != 0 {
		*low = b.LowCut
	}
	if b.HighCut != 0 {
		*high = b.HighCut
	}
	if b.Order != 0 {
		*order = b.Order
	}
}

func parsePreset(s string) (vitals.RespiratoryPreset, error) {
	switch s {
	case "wristband":
		return vitals.RespiratoryPresetWristband, nil
	case "compact":
		return vitals.RespiratoryPresetCompact, nil
	case "spectral":
		return vitals.RespiratoryPresetSpectral, nil
	default:
		return 0, fmt.Errorf("%w: unknown respiratory preset %q", vitals.ErrInvalidConfig, s)
	}
}
