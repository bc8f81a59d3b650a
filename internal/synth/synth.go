// Package synth generates deterministic synthetic BVP traces: a pulse train
// with respiratory amplitude modulation, baseline wander and frequency
// modulation. It is not a physiological model.
package synth

import (
	"math"
	"math/rand/v2"
)

const (
	msPerSecond      = 1000.0
	secondsPerMinute = 60.0

	// Pulse shape: systolic wave plus a smaller dicrotic wave, as gaussians
	// over the cardiac phase [0, 1).
	systolicCenter  = 0.25
	systolicWidth   = 0.08
	dicroticCenter  = 0.55
	dicroticWidth   = 0.10
	dicroticScale   = 0.35
	defaultSeedHigh = 0x6276
	defaultSeedLow  = 0x7076
)

// Params configures a Generator.
type Params struct {
	// SampleRate in Hz.
	SampleRate float64

	// HeartRateBPM is the mean pulse rate.
	HeartRateBPM float64

	// RespiratoryRateBPM is the breathing rate driving all modulations.
	// Zero disables modulation.
	RespiratoryRateBPM float64

	// AmplitudeModulation is the fractional pulse amplitude swing (0-1).
	AmplitudeModulation float64

	// BaselineWander is the amplitude of the additive respiratory baseline.
	BaselineWander float64

	// FrequencyModulation is the fractional heart-rate swing (0-1).
	FrequencyModulation float64

	// Noise is the standard deviation of additive gaussian noise.
	Noise float64

	// Offset is a DC level added to every sample.
	Offset float64

	// StartMs is the timestamp of the first sample.
	StartMs int64

	// Seed makes the noise reproducible.
	Seed uint64
}

// DefaultParams returns a resting-adult trace at 64 Hz.
func DefaultParams() Params {
	return Params{
		SampleRate:          64,
		HeartRateBPM:        72,
		RespiratoryRateBPM:  15,
		AmplitudeModulation: 0.2,
		BaselineWander:      0.3,
		FrequencyModulation: 0.05,
		Offset:              0,
	}
}

// Generator produces samples one at a time.
type Generator struct {
	p      Params
	n      int64
	phase  float64
	rng    *rand.Rand
	period float64
}

// New creates a generator.
func New(p Params) *Generator {
	seed := p.Seed
	if seed == 0 {
		seed = defaultSeedLow
	}
	return &Generator{
		p:      p,
		rng:    rand.New(rand.NewPCG(defaultSeedHigh, seed)),
		period: msPerSecond / p.SampleRate,
	}
}

// Next returns the next sample value and its timestamp in milliseconds.
func (g *Generator) Next() (float32, int64) {
	p := g.p
	t := float64(g.n) / p.SampleRate
	ts := p.StartMs + int64(math.Round(float64(g.n)*g.period))
	g.n++

	resp := 0.0
	if p.RespiratoryRateBPM > 0 {
		resp = math.Sin(2 * math.Pi * p.RespiratoryRateBPM / secondsPerMinute * t)
	}

	hr := p.HeartRateBPM * (1 + p.FrequencyModulation*resp)
	g.phase += hr / secondsPerMinute / p.SampleRate
	g.phase -= math.Floor(g.phase)

	pulse := gauss(g.phase, systolicCenter, systolicWidth) +
		dicroticScale*gauss(g.phase, dicroticCenter, dicroticWidth)
	pulse *= 1 + p.AmplitudeModulation*resp

	v := p.Offset + pulse + p.BaselineWander*resp
	if p.Noise > 0 {
		v += p.Noise * g.rng.NormFloat64()
	}
	return float32(v), ts
}

// Generate returns n consecutive values and their timestamps.
func (g *Generator) Generate(n int) ([]float32, []int64) {
	values := make([]float32, n)
	times := make([]int64, n)
	for i := range n {
		values[i], times[i] = g.Next()
	}
	return values, times
}

// Sine returns n samples of a pure sine with the given period in samples.
// Its local maxima are exactly period samples apart.
func Sine(n int, period, phase float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2*math.Pi*float64(i)/period + phase))
	}
	return out
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}
