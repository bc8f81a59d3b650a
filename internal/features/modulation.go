package features

import (
	"math"
)

// Modulation holds the three respiratory-induced modulation features of a
// cardiac waveform.
type Modulation struct {
	// AM is the amplitude modulation.
	AM float64
	// BW is the baseline wander.
	BW float64
	// FM is the frequency modulation.
	FM float64
}

// ModulationFromExtrema pairs peaks and troughs by position (truncated to the
// shorter list) and returns the mean |peak − trough| as AM, the mean
// (peak + trough)/2 as BW and the spread of peak-to-peak intervals as FM.
func ModulationFromExtrema(signal []float64, peaks, troughs []int) Modulation {
	pairs := min(len(peaks), len(troughs))

	var am, bw float64
	for i := range pairs {
		p, q := signal[peaks[i]], signal[troughs[i]]
		am += math.Abs(p - q)
		bw += (p + q) / halfDivisor
	}
	if pairs > 0 {
		am /= float64(pairs)
		bw /= float64(pairs)
	}

	return Modulation{AM: am, BW: bw, FM: IntervalStdDev(peaks)}
}

// ModulationFromSignal derives the features directly from the waveform:
// AM is max − min, BW the mean and FM the standard deviation.
func ModulationFromSignal(signal []float64) Modulation {
	return Modulation{
		AM: Amplitude(signal),
		BW: Mean(signal),
		FM: StdDev(signal),
	}
}

// Intervals returns consecutive index differences.
func Intervals(indices []int) []float64 {
	if len(indices) < 2 {
		return nil
	}
	out := make([]float64, len(indices)-1)
	for i := 1; i < len(indices); i++ {
		out[i-1] = float64(indices[i] - indices[i-1])
	}
	return out
}

// IntervalStdDev returns the population standard deviation of consecutive
// index intervals, or 0 for fewer than two indices.
func IntervalStdDev(indices []int) float64 {
	return StdDev(Intervals(indices))
}

// MeanInterval returns the mean consecutive index interval, or 0 for fewer
// than two indices.
func MeanInterval(indices []int) float64 {
	return Mean(Intervals(indices))
}
