package extrema

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-bvp-vitals/internal/testutil"
)

const testSampleRate = 64.0

func TestPeaksAndTroughs_Literal(t *testing.T) {
	signal := []float64{0, 2, 1, 3, 3, 1, -1, 0, -2, 4}

	assert.Equal(t, []int{1, 7}, Peaks(signal), "plateau at 3,3 is not a strict maximum")
	assert.Equal(t, []int{2, 6, 8}, Troughs(signal))
}

func TestPeaksAndTroughs_ShortSignals(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
	}{
		{"nil", nil},
		{"one", []float64{1}},
		{"two", []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Peaks(tt.signal))
			assert.Empty(t, Troughs(tt.signal))
			assert.Empty(t, PositivePeaks(tt.signal))
		})
	}
}

func TestPeaksAndTroughs_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := range 50 {
		n := 3 + rng.IntN(500)
		signal := make([]float64, n)
		for i := range signal {
			signal[i] = rng.NormFloat64()
		}

		set := Detect(signal)
		testutil.AssertStrictlyIncreasing(t, set.Peaks, "trial %d", trial)
		testutil.AssertStrictlyIncreasing(t, set.Troughs, "trial %d", trial)
		testutil.AssertIndicesInterior(t, set.Peaks, n)
		testutil.AssertIndicesInterior(t, set.Troughs, n)

		filtered := DetectRefractory(signal, testSampleRate)
		testutil.AssertStrictlyIncreasing(t, filtered.Peaks)
		testutil.AssertStrictlyIncreasing(t, filtered.Troughs)
		testutil.AssertMinSpacing(t, filtered.Peaks, RefractorySeconds*testSampleRate)
		testutil.AssertMinSpacing(t, filtered.Troughs, RefractorySeconds*testSampleRate)
	}
}

func TestPositivePeaks(t *testing.T) {
	signal := []float64{0, -1, -2, -0.5, -3, 1, 0, 2, 1}
	assert.Equal(t, []int{3, 5, 7}, Peaks(signal))
	assert.Equal(t, []int{5, 7}, PositivePeaks(signal))
}

func TestFilterMeanRelative(t *testing.T) {
	// Mean is 0; 4 is within the interval of 2.
	signal := make([]float64, 14)
	signal[2] = 1
	signal[4] = 2
	signal[7] = -1
	signal[10] = 1
	signal[12] = -3

	peaks := Peaks(signal)
	assert.Equal(t, []int{2, 4, 10}, peaks)

	assert.Equal(t, []int{2, 10}, FilterMeanRelative(signal, peaks, Peak, 3))
	assert.Equal(t, []int{2, 4, 10}, FilterMeanRelative(signal, peaks, Peak, 1))

	troughs := Troughs(signal)
	assert.Equal(t, []int{3, 7, 12}, troughs, "the zero at 3 sits between two positive samples")
	assert.Equal(t, []int{7, 12}, FilterMeanRelative(signal, troughs, Trough, 3))
	assert.Equal(t, []int{7}, FilterMeanRelative(signal, troughs, Trough, 5))
}

func TestFilterMeanRelative_Empty(t *testing.T) {
	assert.Empty(t, FilterMeanRelative([]float64{1, 2, 3}, nil, Peak, 1))
}

func TestFilterMeanRelative_AllRejected(t *testing.T) {
	// A lone peak equal to the mean is not above it.
	signal := []float64{1, 1, 1}
	assert.Empty(t, FilterMeanRelative(signal, []int{1}, Peak, 0))
	assert.Empty(t, FilterMeanRelative(signal, []int{1}, Trough, 0))
}

func TestDetectRefractory_SineTrain(t *testing.T) {
	const (
		n      = 1280
		period = 40 // samples, longer than the 25.6-sample refractory interval
	)
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*float64(i)/period + 0.3)
	}

	set := DetectRefractory(signal, testSampleRate)
	assert.InDelta(t, n/period, len(set.Peaks), 1)
	assert.InDelta(t, n/period, len(set.Troughs), 1)
	for i := 1; i < len(set.Peaks); i++ {
		assert.Equal(t, period, set.Peaks[i]-set.Peaks[i-1])
	}
}

func TestValues(t *testing.T) {
	signal := []float64{5, 6, 7, 8}
	assert.Equal(t, []float64{6, 8}, Values(signal, []int{1, 3}))
	assert.Empty(t, Values(signal, nil))
}
