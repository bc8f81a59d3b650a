package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-bvp-vitals/internal/synth"
	"github.com/tphakala/go-bvp-vitals/internal/testutil"
)

func TestEstimateHeartRate(t *testing.T) {
	bpm, err := EstimateHeartRate(synth.Sine(512, 32, 0.3), nil)
	require.NoError(t, err)
	testutil.AssertRelativeError(t, 120, bpm, 0.03)

	bpm, err = EstimateHeartRate(make([]float32, 512), nil)
	require.NoError(t, err, "degenerate windows read as zero")
	assert.Zero(t, bpm)
}

func TestEstimateHeartRate_InvalidBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartRate.HighCut = 64
	_, err := EstimateHeartRate(make([]float32, 16), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEstimateRespiratoryRate(t *testing.T) {
	values, _ := synth.New(synth.DefaultParams()).Generate(1280)

	rate, err := EstimateRespiratoryRate(values, nil)
	require.NoError(t, err)
	testutil.AssertFinite(t, rate)

	cfg := DefaultConfig()
	cfg.Respiratory = GetRespiratoryPreset(RespiratoryPresetSpectral)
	rate, err = EstimateRespiratoryRate(make([]float32, 256), cfg)
	require.NoError(t, err, "implausible results read as zero")
	assert.Zero(t, rate)
}

func TestEstimateBloodPressure(t *testing.T) {
	sys, dia, err := EstimateBloodPressure(make([]float32, 64), 30, nil)
	require.NoError(t, err)
	assert.InDelta(t, RegressionAge20to40.SystolicIntercept, sys, testutil.PressureDelta)
	assert.InDelta(t, RegressionAge20to40.DiastolicIntercept, dia, testutil.PressureDelta)
}
