package features

// VectorLen is the number of scalars in a flattened Vector.
const VectorLen = 12 + NumBands

// Vector is the fixed-shape feature tuple produced once per compute cycle.
type Vector struct {
	Mean                  float64
	StdDev                float64
	Amplitude             float64
	PulseWidthVariability float64
	PulseRateVariability  float64
	PulseTransitTime      float64
	HeartRate             float64
	Skewness              float64
	Kurtosis              float64
	BandPowers            [NumBands]float64
	Modulation            Modulation
}

// Slice flattens v in field order.
func (v *Vector) Slice() []float64 {
	out := make([]float64, 0, VectorLen)
	out = append(out,
		v.Mean,
		v.StdDev,
		v.Amplitude,
		v.PulseWidthVariability,
		v.PulseRateVariability,
		v.PulseTransitTime,
		v.HeartRate,
		v.Skewness,
		v.Kurtosis,
	)
	out = append(out, v.BandPowers[:]...)
	return append(out, v.Modulation.AM, v.Modulation.BW, v.Modulation.FM)
}

// Input bundles what Extract reads. Raw and PeakTimesMs are optional: without
// Raw the variability features use Filtered; without peak times PTT and heart
// rate are 0.
type Input struct {
	// Filtered is the band-passed window.
	Filtered []float64

	// Raw is the unfiltered window.
	Raw []float64

	// Peaks and Troughs are window-relative extrema indices.
	Peaks   []int
	Troughs []int

	// PeakTimesMs are the timestamps of accepted peaks.
	PeakTimesMs []int64

	// SmoothWidth, when 2 or more, applies a moving average before the
	// moment statistics.
	SmoothWidth int
}

// Extract computes the feature vector for one window.
func Extract(in Input) Vector {
	signal := in.Filtered
	if in.SmoothWidth > 1 {
		signal = MovingAverage(signal, in.SmoothWidth)
	}

	raw := in.Raw
	if raw == nil {
		raw = in.Filtered
	}
	variability := DiffStdDev(raw)

	return Vector{
		Mean:                  Mean(signal),
		StdDev:                StdDev(signal),
		Amplitude:             Amplitude(signal),
		PulseWidthVariability: variability,
		PulseRateVariability:  variability,
		PulseTransitTime:      PulseTransitTime(in.PeakTimesMs),
		HeartRate:             HeartRateFromPeakTimes(in.PeakTimesMs),
		Skewness:              Skewness(signal),
		Kurtosis:              Kurtosis(signal),
		BandPowers:            BandPowers(signal),
		Modulation:            ModulationFromExtrema(in.Filtered, in.Peaks, in.Troughs),
	}
}
