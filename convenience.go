package vitals

import (
	"fmt"

	"github.com/tphakala/go-bvp-vitals/internal/filter"
	"github.com/tphakala/go-bvp-vitals/internal/simdops"
)

// Convenience functions that run one compute cycle over a complete window,
// without the streaming window or readiness protocol. Degenerate windows
// return 0 with a nil error, as the estimators do.

// EstimateHeartRate returns beats per minute for one window.
func EstimateHeartRate(window []float32, cfg *Config) (float64, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	filtered, err := oneShotFilter(window, cfg.heartRateFilter())
	if err != nil {
		return 0, err
	}

	bpm, err := heartRate(filtered, cfg.SampleRate)
	return bpm, maskDegenerate(err)
}

// EstimateRespiratoryRate returns breaths per minute for one window using
// the configured strategy.
func EstimateRespiratoryRate(window []float32, cfg *Config) (float64, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Respiratory.Validate(); err != nil {
		return 0, err
	}
	filtered, err := oneShotFilter(window, cfg.respiratoryFilter())
	if err != nil {
		return 0, err
	}

	if cfg.Respiratory.Strategy == RespiratorySpectral {
		rate, err := spectralRate(filtered, cfg.SampleRate, cfg.Respiratory.LowCut, cfg.Respiratory.HighCut)
		return rate, maskDegenerate(err)
	}
	return fusionRate(filtered, cfg.SampleRate), nil
}

// EstimateBloodPressure returns systolic and diastolic pressure for one
// window using the median-pins regression for age.
func EstimateBloodPressure(window []float32, age int, cfg *Config) (systolic, diastolic float64, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	filtered, err := oneShotFilter(window, cfg.pressureFilter())
	if err != nil {
		return 0, 0, err
	}

	systolic, diastolic = RegressionForAge(age).Apply(pinSum(filtered))
	return systolic, diastolic, nil
}

func oneShotFilter(window []float32, params filter.FilterParams) ([]float64, error) {
	bp, err := filter.NewBandpass(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return bp.Apply(simdops.Widen(nil, window)), nil
}

func maskDegenerate(err error) error {
	if Classify(err) == ClassDegenerate {
		return nil
	}
	return err
}
