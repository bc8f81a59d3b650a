package vitals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-bvp-vitals/internal/synth"
	"github.com/tphakala/go-bvp-vitals/internal/testutil"
)

func TestCountOrig(t *testing.T) {
	tests := []struct {
		name     string
		filtered []float64
		peaks    []int
		want     float64
	}{
		{
			// 3 equal peaks, 2 qualifying pairs in 8 samples at 64 Hz.
			name:     "all above threshold",
			filtered: []float64{0, 1, 0, 1, 0, 1, 0, 0},
			peaks:    []int{1, 3, 5},
			want:     2 / (8.0 / 64 / 60),
		},
		{
			// Upper quartile of {0.1, 1, 1, 1} is 1; threshold 0.2 rejects the
			// first pair.
			name:     "small first peak",
			filtered: []float64{0, 0.1, 0, 1, 0, 1, 0, 1},
			peaks:    []int{1, 3, 5, 7},
			want:     2 / (8.0 / 64 / 60),
		},
		{
			name:     "no peaks",
			filtered: []float64{0, 0, 0, 0},
			peaks:    nil,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, countOrig(tt.filtered, tt.peaks, 64), 1e-9)
		})
	}
}

func TestFusionRate_Weights(t *testing.T) {
	assert.InDelta(t, 1.0, fusionWeightAM+fusionWeightBW+fusionWeightFM+fusionWeightCount, 1e-12)
	assert.InDelta(t, 1.0, spectralWeightAM+spectralWeightBW+spectralWeightFM+spectralWeightRate, 1e-12)
}

func TestFusionRate_FlatSignal(t *testing.T) {
	assert.Zero(t, fusionRate(make([]float64, 256), 64), "empty extrema contribute zeros")
}

func TestSpectralRate_Implausible(t *testing.T) {
	rate, err := spectralRate(make([]float64, 256), 125, 0.1, 0.5)
	assert.Zero(t, rate)
	require.ErrorIs(t, err, ErrImplausible)
	assert.Equal(t, ClassDegenerate, Classify(err))
}

func TestSpectralRate_Plausible(t *testing.T) {
	// A 0.3 Hz sine at 125 Hz has its dominant bin near 18 breaths/min. The
	// amplitude is large enough for the fused value to land in range.
	const (
		fs        = 125.0
		amplitude = 20.0
	)
	signal := make([]float64, 1024)
	for i := range signal {
		signal[i] = amplitude * math.Sin(2*math.Pi*0.3*float64(i)/fs)
	}

	rate, err := spectralRate(signal, fs, 0.1, 0.5)
	require.NoError(t, err)
	testutil.AssertInRange(t, rate, minPlausibleRespiratoryRate, maxPlausibleRespiratoryRate)
}

func TestRespiratoryEstimator_Presets(t *testing.T) {
	tests := []struct {
		name     string
		preset   RespiratoryPreset
		rate     float64
		strategy RespiratoryStrategy
		window   int
	}{
		{"wristband", RespiratoryPresetWristband, 64, RespiratoryExtremaFusion, 1280},
		{"compact", RespiratoryPresetCompact, 64, RespiratoryExtremaFusion, 256},
		{"spectral", RespiratoryPresetSpectral, 125, RespiratorySpectral, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SampleRate = tt.rate
			cfg.Respiratory = GetRespiratoryPreset(tt.preset)
			obs := &recorder{}
			cfg.Observer = obs

			e, err := NewRespiratoryEstimator(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, e.Strategy())

			p := synth.DefaultParams()
			p.SampleRate = tt.rate
			gen := synth.New(p)

			// One full window then two half windows: three overlapping cycles.
			for range tt.window * 2 {
				v, ts := gen.Next()
				e.Push(Sample{Value: v, TimestampMs: ts})
			}

			reports := obs.snapshot()
			require.Len(t, reports, 3)
			for _, rep := range reports {
				assert.NotEqual(t, ClassTransient, rep.Class)
				testutil.AssertFinite(t, rep.Reading.Value)
			}

			require.True(t, e.IsReady())
			assert.Equal(t, uint64(3), e.Read().Cycle)
		})
	}
}

func TestRespiratoryEstimator_InvalidStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Respiratory.Strategy = RespiratoryStrategy(7)
	_, err := NewRespiratoryEstimator(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseRespiratoryStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    RespiratoryStrategy
		wantErr bool
	}{
		{"", RespiratoryExtremaFusion, false},
		{"extrema-fusion", RespiratoryExtremaFusion, false},
		{"spectral", RespiratorySpectral, false},
		{"fft", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRespiratoryStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) RespiratoryStrategy {
	t.Helper()
	got, err := ParseRespiratoryStrategy(s)
	require.NoError(t, err)
	return got
}
