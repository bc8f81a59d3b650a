// Package filter provides the IIR band-pass filters used to isolate the
// cardiac and respiratory bands of a BVP signal.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

const (
	// Filter design constants
	minOrder = 1
	maxOrder = 12

	// Bilinear transform: s = 2·fs·(z-1)/(z+1)
	bilinearFactor = 2.0

	halfDivisor = 2.0
)

// ErrInvalidParams is returned when a filter cannot be designed from the
// requested parameters.
var ErrInvalidParams = errors.New("invalid filter parameters")

// FilterParams holds the parameters for a band-pass design.
type FilterParams struct {
	// LowCut is the lower -3 dB edge in Hz.
	LowCut float64

	// HighCut is the upper -3 dB edge in Hz. Must stay below Nyquist.
	HighCut float64

	// SampleRate is the input sample rate in Hz.
	SampleRate float64

	// Order is the order of the low-pass prototype. The band-pass filter
	// has twice this order and runs as Order biquad sections.
	Order int
}

// Center returns the arithmetic center of the pass band.
func (fp *FilterParams) Center() float64 {
	return (fp.LowCut + fp.HighCut) / halfDivisor
}

// Bandwidth returns the pass band width in Hz.
func (fp *FilterParams) Bandwidth() float64 {
	return fp.HighCut - fp.LowCut
}

// Nyquist returns half the sample rate.
func (fp *FilterParams) Nyquist() float64 {
	return fp.SampleRate / halfDivisor
}

// Validate checks if filter parameters are valid.
func (fp *FilterParams) Validate() error {
	if fp.Order < minOrder || fp.Order > maxOrder {
		return fmt.Errorf("%w: order %d (must be %d-%d)", ErrInvalidParams, fp.Order, minOrder, maxOrder)
	}

	if !(fp.SampleRate > 0) || math.IsInf(fp.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate %g Hz (must be positive)", ErrInvalidParams, fp.SampleRate)
	}

	if !(fp.LowCut > 0) {
		return fmt.Errorf("%w: low cut %g Hz (must be positive)", ErrInvalidParams, fp.LowCut)
	}

	if !(fp.HighCut > fp.LowCut) {
		return fmt.Errorf("%w: high cut %g Hz must exceed low cut %g Hz", ErrInvalidParams, fp.HighCut, fp.LowCut)
	}

	if fp.HighCut >= fp.Nyquist() {
		return fmt.Errorf("%w: high cut %g Hz must be below Nyquist %g Hz", ErrInvalidParams, fp.HighCut, fp.Nyquist())
	}

	return nil
}

// biquad is one second-order section in transposed direct form II.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func (s *biquad) process(x float64) float64 {
	y := s.b0*x + s.z1
	s.z1 = s.b1*x - s.a1*y + s.z2
	s.z2 = s.b2*x - s.a2*y
	return y
}

func (s *biquad) reset() {
	s.z1, s.z2 = 0, 0
}

// response evaluates the section at z = e^{jω}.
func (s *biquad) response(z complex128) complex128 {
	zi := 1 / z
	num := complex(s.b0, 0) + complex(s.b1, 0)*zi + complex(s.b2, 0)*zi*zi
	den := 1 + complex(s.a1, 0)*zi + complex(s.a2, 0)*zi*zi
	return num / den
}

// Bandpass is a Butterworth band-pass IIR filter realised as a cascade of
// biquads. The zero value is not usable; construct with NewBandpass.
type Bandpass struct {
	params   FilterParams
	sections []biquad
}

// NewBandpass designs a Butterworth band-pass filter. Invalid parameters are
// rejected here so a filter never exists in a state that would mis-filter.
//
// Design: analog Butterworth prototype poles, low-pass to band-pass transform
// around the prewarped band edges, then the bilinear transform. Each
// prototype pole yields two band-pass poles; every section gets the zero pair
// at z = ±1 and the cascade is normalised to unity gain at the band center.
func NewBandpass(params FilterParams) (*Bandpass, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	k := bilinearFactor * params.SampleRate
	wl := k * math.Tan(math.Pi*params.LowCut/params.SampleRate)
	wh := k * math.Tan(math.Pi*params.HighCut/params.SampleRate)
	w0 := math.Sqrt(wl * wh)
	bw := wh - wl

	n := params.Order
	sections := make([]biquad, 0, n)

	for i := 0; i < (n+1)/2; i++ {
		theta := math.Pi * float64(2*i+1) / float64(2*n)
		realPole := n%2 == 1 && i == (n-1)/2

		p := complex(-math.Sin(theta), math.Cos(theta))
		if realPole {
			p = complex(-1, 0)
		}

		s1, s2 := lowPassToBandPass(p, w0, bw)
		z1, z2 := bilinear(s1, k), bilinear(s2, k)

		if realPole {
			sections = append(sections, sectionFromPoles(z1, z2))
			continue
		}
		sections = append(sections,
			sectionFromPoles(z1, cmplx.Conj(z1)),
			sectionFromPoles(z2, cmplx.Conj(z2)),
		)
	}

	f := &Bandpass{params: params, sections: sections}

	// Normalise at the digital image of the geometric center.
	omega0 := 2 * math.Atan(w0/k)
	gain := 1 / cmplx.Abs(f.responseAt(omega0))
	f.sections[0].b0 *= gain
	f.sections[0].b1 *= gain
	f.sections[0].b2 *= gain

	return f, nil
}

// lowPassToBandPass maps one prototype pole p through s → (s² + w0²)/(s·bw).
func lowPassToBandPass(p complex128, w0, bw float64) (complex128, complex128) {
	pb := p * complex(bw, 0)
	disc := cmplx.Sqrt(pb*pb - complex(4*w0*w0, 0))
	return (pb + disc) / 2, (pb - disc) / 2
}

// bilinear maps an s-plane root to the z-plane.
func bilinear(s complex128, k float64) complex128 {
	kc := complex(k, 0)
	return (kc + s) / (kc - s)
}

// sectionFromPoles builds a biquad with zeros at z = ±1 and the given poles.
// The poles must be a conjugate pair or both real.
func sectionFromPoles(za, zb complex128) biquad {
	return biquad{
		b0: 1,
		b1: 0,
		b2: -1,
		a1: -real(za + zb),
		a2: real(za * zb),
	}
}

// responseAt evaluates the cascade at normalised angular frequency omega.
func (f *Bandpass) responseAt(omega float64) complex128 {
	z := cmplx.Exp(complex(0, omega))
	h := complex(1, 0)
	for i := range f.sections {
		h *= f.sections[i].response(z)
	}
	return h
}

// Magnitude returns |H(f)| for a frequency in Hz.
func (f *Bandpass) Magnitude(freqHz float64) float64 {
	omega := 2 * math.Pi * freqHz / f.params.SampleRate
	return cmplx.Abs(f.responseAt(omega))
}

// Params returns the design parameters.
func (f *Bandpass) Params() FilterParams {
	return f.params
}

// Sections returns the number of biquad sections.
func (f *Bandpass) Sections() int {
	return len(f.sections)
}

// Process filters one sample, updating the internal delay lines.
func (f *Bandpass) Process(x float64) float64 {
	for i := range f.sections {
		x = f.sections[i].process(x)
	}
	return x
}

// Reset clears the delay lines.
func (f *Bandpass) Reset() {
	for i := range f.sections {
		f.sections[i].reset()
	}
}

// Apply filters a whole window from a cleared state and returns a new slice
// of the same length. The filter state is left cleared afterwards, so
// repeated calls on the same input produce identical output.
func (f *Bandpass) Apply(input []float64) []float64 {
	f.Reset()
	defer f.Reset()

	out := make([]float64, len(input))
	for i, x := range input {
		out[i] = f.Process(x)
	}
	return out
}
