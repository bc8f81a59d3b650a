package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-bvp-vitals/internal/testutil"
)

const statTolerance = 1e-12

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"even_pair", []float64{1, 3}, 2},
		{"odd_triple", []float64{1, 2, 3}, 2},
		{"unsorted_odd", []float64{9, -1, 4, 2, 5}, 4},
		{"unsorted_even", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Median(tt.in), statTolerance)
		})
	}
}

func TestMedian_DoesNotModifyInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestUpperQuartile(t *testing.T) {
	assert.InDelta(t, 0.0, UpperQuartile(nil), 0)
	assert.InDelta(t, 5.0, UpperQuartile([]float64{5}), 0)
	// ceil(0.75·4) = 3
	assert.InDelta(t, 4.0, UpperQuartile([]float64{4, 1, 3, 2}), 0)
	// ceil(0.75·2) = 2, clamped to 1
	assert.InDelta(t, 9.0, UpperQuartile([]float64{9, 1}), 0)
}

func TestMeanAndStdDev(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(x), statTolerance)
	assert.InDelta(t, 2.0, StdDev(x), statTolerance, "population formula")

	assert.InDelta(t, 0.0, Mean(nil), 0)
	assert.InDelta(t, 0.0, StdDev(nil), 0)
}

func TestSkewnessKurtosis_Constant(t *testing.T) {
	constant := make([]float64, 1280)
	for i := range constant {
		constant[i] = 0.1
	}

	skew := Skewness(constant)
	kurt := Kurtosis(constant)
	assert.InDelta(t, 0.0, skew, 0)
	assert.InDelta(t, 0.0, kurt, 0)
	testutil.AssertFinite(t, skew)
	testutil.AssertFinite(t, kurt)
}

func TestSkewnessKurtosis_Known(t *testing.T) {
	// Symmetric two-point distribution: skew 0, excess kurtosis -2.
	twoPoint := []float64{-1, 1, -1, 1}
	assert.InDelta(t, 0.0, Skewness(twoPoint), statTolerance)
	assert.InDelta(t, -2.0, Kurtosis(twoPoint), statTolerance)

	// Right-skewed: mean 1, deviations -1,-1,-1,3, σ² = 3.
	skewed := []float64{0, 0, 0, 4}
	wantSkew := (3*-1.0 + 27) / 4 / math.Pow(3, 1.5)
	wantKurt := (3*1.0+81)/4/9 - 3
	assert.InDelta(t, wantSkew, Skewness(skewed), statTolerance)
	assert.InDelta(t, wantKurt, Kurtosis(skewed), statTolerance)
}

func TestSkewnessKurtosis_Empty(t *testing.T) {
	assert.InDelta(t, 0.0, Skewness(nil), 0)
	assert.InDelta(t, 0.0, Kurtosis(nil), 0)
}

func TestAmplitude(t *testing.T) {
	assert.InDelta(t, 0.0, Amplitude(nil), 0)
	assert.InDelta(t, 7.0, Amplitude([]float64{-2, 5, 1}), statTolerance)
}

func TestDiffStdDev(t *testing.T) {
	assert.Empty(t, Diff([]float64{1}))
	assert.Equal(t, []float64{1, 2, -4}, Diff([]float64{0, 1, 3, -1}))

	// Linear ramp: constant differences, zero spread.
	assert.InDelta(t, 0.0, DiffStdDev([]float64{0, 1, 2, 3, 4}), statTolerance)
	assert.InDelta(t, 0.0, DiffStdDev(nil), 0)

	// Diffs 1, -1: σ = 1.
	assert.InDelta(t, 1.0, DiffStdDev([]float64{0, 1, 0}), statTolerance)
}

func TestMovingAverage(t *testing.T) {
	x := []float64{0, 3, 6, 9}
	assert.Equal(t, x, MovingAverage(x, 1))

	got := MovingAverage(x, 3)
	assert.InDeltaSlice(t, []float64{1.5, 3, 6, 7.5}, got, statTolerance)
	assert.Equal(t, []float64{0, 3, 6, 9}, x, "input untouched")
}
