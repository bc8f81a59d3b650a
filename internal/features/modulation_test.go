package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModulationFromExtrema(t *testing.T) {
	signal := []float64{0, 3, 0, -1, 0, 5, 0, -3, 0, 4, 0}
	peaks := []int{1, 5, 9}
	troughs := []int{3, 7}

	m := ModulationFromExtrema(signal, peaks, troughs)

	// Pairs (3,-1) and (5,-3); the third peak has no trough.
	assert.InDelta(t, (4.0+8.0)/2, m.AM, statTolerance)
	assert.InDelta(t, (1.0+1.0)/2, m.BW, statTolerance)
	// Intervals 4, 4.
	assert.InDelta(t, 0.0, m.FM, statTolerance)
}

func TestModulationFromExtrema_Empty(t *testing.T) {
	m := ModulationFromExtrema([]float64{1, 2, 3}, nil, nil)
	assert.Equal(t, Modulation{}, m)

	m = ModulationFromExtrema([]float64{1, 2, 3}, []int{1}, nil)
	assert.Equal(t, Modulation{}, m)
}

func TestModulationFromSignal(t *testing.T) {
	m := ModulationFromSignal([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 7.0, m.AM, statTolerance)
	assert.InDelta(t, 5.0, m.BW, statTolerance)
	assert.InDelta(t, 2.0, m.FM, statTolerance)
}

func TestIntervals(t *testing.T) {
	assert.Nil(t, Intervals([]int{4}))
	assert.Equal(t, []float64{2, 6}, Intervals([]int{1, 3, 9}))
	// Intervals 2 and 6: mean 4, σ 2.
	assert.InDelta(t, 4.0, MeanInterval([]int{1, 3, 9}), statTolerance)
	assert.InDelta(t, 2.0, IntervalStdDev([]int{1, 3, 9}), statTolerance)
	assert.InDelta(t, 0.0, MeanInterval(nil), 0)
}

func TestTiming(t *testing.T) {
	assert.InDelta(t, 0.0, PulseTransitTime(nil), 0)
	assert.InDelta(t, 0.0, PulseTransitTime([]int64{100}), 0)
	assert.InDelta(t, 0.85, PulseTransitTime([]int64{0, 800, 1650}), statTolerance)

	assert.InDelta(t, 0.0, HeartRateFromPeakTimes([]int64{5}), 0)
	assert.InDelta(t, 0.0, HeartRateFromPeakTimes([]int64{5, 5}), 0)
	// 4 beats over 3 s → 3 intervals · 60 / 3 = 60 BPM.
	assert.InDelta(t, 60.0, HeartRateFromPeakTimes([]int64{1000, 2000, 3000, 4000}), statTolerance)

	assert.InDelta(t, 0.0, RateFromMeanInterval(64, 0), 0)
	assert.InDelta(t, 96.0, RateFromMeanInterval(64, 40), statTolerance)
}

func TestExtract(t *testing.T) {
	filtered := []float64{0, 1, 0, -1, 0, 1, 0, -1, 0}
	raw := []float64{10, 11, 10, 9, 10, 11, 10, 9, 10}

	v := Extract(Input{
		Filtered:    filtered,
		Raw:         raw,
		Peaks:       []int{1, 5},
		Troughs:     []int{3, 7},
		PeakTimesMs: []int64{0, 1000},
	})

	assert.InDelta(t, 0.0, v.Mean, statTolerance)
	assert.InDelta(t, 2.0, v.Amplitude, statTolerance)
	assert.InDelta(t, 1.0, v.PulseTransitTime, statTolerance)
	assert.InDelta(t, 60.0, v.HeartRate, statTolerance)
	assert.InDelta(t, v.PulseWidthVariability, v.PulseRateVariability, 0)
	assert.Greater(t, v.PulseWidthVariability, 0.0)
	assert.InDelta(t, 2.0, v.Modulation.AM, statTolerance)
	assert.InDelta(t, 4.0, Intervals([]int{1, 5})[0], 0)

	flat := v.Slice()
	assert.Len(t, flat, VectorLen)
	assert.InDelta(t, v.Kurtosis, flat[8], 0)
	assert.InDelta(t, v.BandPowers[BandHigh], flat[11], 0)
	assert.InDelta(t, v.Modulation.FM, flat[VectorLen-1], 0)
}

func TestExtract_Degenerate(t *testing.T) {
	v := Extract(Input{})
	assert.Equal(t, Vector{}, v)

	constant := []float64{3, 3, 3, 3}
	v = Extract(Input{Filtered: constant, SmoothWidth: 3})
	assert.InDelta(t, 3.0, v.Mean, statTolerance)
	assert.InDelta(t, 0.0, v.Skewness, 0)
	assert.InDelta(t, 0.0, v.Kurtosis, 0)
}
