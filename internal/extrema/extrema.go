// Package extrema locates systolic-like peaks and diastolic-like troughs in a
// filtered BVP window.
package extrema

import (
	"github.com/tphakala/go-bvp-vitals/internal/simdops"
)

// RefractorySeconds is the minimum spacing between two accepted extrema of
// the same kind in the mean-relative filter.
const RefractorySeconds = 0.4

// minSignalLength is the shortest signal with an interior sample.
const minSignalLength = 3

// Kind distinguishes maxima from minima.
type Kind int

const (
	Peak Kind = iota
	Trough
)

// Set holds window-relative extrema indices, each strictly increasing.
type Set struct {
	Peaks   []int
	Troughs []int
}

// Peaks returns the indices of strict local maxima over 1..len-2.
func Peaks(signal []float64) []int {
	if len(signal) < minSignalLength {
		return nil
	}

	var out []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] > signal[i-1] && signal[i] > signal[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// Troughs returns the indices of strict local minima over 1..len-2.
func Troughs(signal []float64) []int {
	if len(signal) < minSignalLength {
		return nil
	}

	var out []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] < signal[i-1] && signal[i] < signal[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// PositivePeaks returns strict local maxima whose value is above zero.
// On a band-passed cardiac signal this drops the small ripples that sit
// below the baseline between beats.
func PositivePeaks(signal []float64) []int {
	peaks := Peaks(signal)
	out := peaks[:0]
	for _, i := range peaks {
		if signal[i] > 0 {
			out = append(out, i)
		}
	}
	return out
}

// Detect returns the raw strict extrema of signal.
func Detect(signal []float64) Set {
	return Set{
		Peaks:   Peaks(signal),
		Troughs: Troughs(signal),
	}
}

// DetectRefractory returns extrema that pass the mean-relative filter with a
// refractory interval of RefractorySeconds at the given sample rate.
func DetectRefractory(signal []float64, sampleRate float64) Set {
	minInterval := RefractorySeconds * sampleRate
	return Set{
		Peaks:   FilterMeanRelative(signal, Peaks(signal), Peak, minInterval),
		Troughs: FilterMeanRelative(signal, Troughs(signal), Trough, minInterval),
	}
}

// FilterMeanRelative keeps peaks above the signal mean (troughs below it)
// that are more than minInterval samples after the previously kept index.
func FilterMeanRelative(signal []float64, indices []int, kind Kind, minInterval float64) []int {
	if len(indices) == 0 {
		return nil
	}

	mean := simdops.Mean(signal)

	var kept []int
	for _, idx := range indices {
		v := signal[idx]
		if kind == Peak && !(v > mean) {
			continue
		}
		if kind == Trough && !(v < mean) {
			continue
		}
		if len(kept) > 0 && float64(idx-kept[len(kept)-1]) <= minInterval {
			continue
		}
		kept = append(kept, idx)
	}
	return kept
}

// Values gathers signal[i] for each index.
func Values(signal []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for k, i := range indices {
		out[k] = signal[i]
	}
	return out
}
