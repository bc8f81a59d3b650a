package features

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Number of coarse spectral bands.
const NumBands = 3

// Band indices into a band power array.
const (
	BandLow = iota
	BandMid
	BandHigh
)

// minSpectrumLength is the shortest input worth transforming.
const minSpectrumLength = 2

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Spectrum zero-pads x to the next power of two and returns the magnitudes
// of the non-negative frequency bins 0..nfft/2 together with nfft.
// Bin k sits at k·sampleRate/nfft Hz.
func Spectrum(x []float64) (mags []float64, nfft int) {
	if len(x) < minSpectrumLength {
		return nil, 0
	}

	nfft = NextPow2(len(x))
	padded := make([]float64, nfft)
	copy(padded, x)

	fft := fourier.NewFFT(nfft)
	coeffs := fft.Coefficients(nil, padded)

	mags = make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags, nfft
}

// BandPowers sums spectrum magnitudes into three equal contiguous thirds
// (low, mid, high). Bins left over by the integer split go to the high band.
// This is a coarse energy distribution, not a physiological band isolation.
func BandPowers(x []float64) [NumBands]float64 {
	var bands [NumBands]float64

	mags, _ := Spectrum(x)
	if len(mags) == 0 {
		return bands
	}

	third := len(mags) / NumBands
	for i, m := range mags {
		b := BandHigh
		if third > 0 {
			b = min(i/third, BandHigh)
		}
		bands[b] += m
	}
	return bands
}

// DominantFrequency returns the frequency in Hz of the largest-magnitude bin
// within [lowHz, highHz]. ok is false when no bin falls inside the range.
func DominantFrequency(x []float64, sampleRate, lowHz, highHz float64) (freq float64, ok bool) {
	mags, nfft := Spectrum(x)
	if len(mags) == 0 || sampleRate <= 0 {
		return 0, false
	}

	binHz := sampleRate / float64(nfft)
	best := -1
	for k := 1; k < len(mags); k++ {
		f := float64(k) * binHz
		if f < lowHz || f > highHz {
			continue
		}
		if best < 0 || mags[k] > mags[best] {
			best = k
		}
	}

	if best < 0 {
		return 0, false
	}
	return float64(best) * binHz, true
}
