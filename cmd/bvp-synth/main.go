// Command bvp-synth writes a synthetic BVP trace as a mono WAV file.
//
// Usage:
//
//	bvp-synth -duration 60s trace.wav
//	bvp-synth -hr 90 -rr 18 -noise 0.02 -rate 125 trace.wav
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tphakala/go-bvp-vitals/internal/synth"
	"github.com/tphakala/go-bvp-vitals/internal/wavio"
)

const (
	minRequiredArgs = 1
	defaultDuration = time.Minute
	defaultBitDepth = 16
	defaultFull     = 4.0
	writeChunk      = 1024
)

func main() {
	defaults := synth.DefaultParams()

	rate := flag.Float64("rate", defaults.SampleRate, "Sample rate in Hz")
	duration := flag.Duration("duration", defaultDuration, "Trace length")
	hr := flag.Float64("hr", defaults.HeartRateBPM, "Heart rate in BPM")
	rr := flag.Float64("rr", defaults.RespiratoryRateBPM, "Respiratory rate in breaths/min")
	am := flag.Float64("am", defaults.AmplitudeModulation, "Respiratory amplitude modulation (0-1)")
	bw := flag.Float64("bw", defaults.BaselineWander, "Respiratory baseline wander")
	fm := flag.Float64("fm", defaults.FrequencyModulation, "Respiratory heart-rate modulation (0-1)")
	noise := flag.Float64("noise", 0, "Gaussian noise standard deviation")
	seed := flag.Uint64("seed", 0, "Noise seed")
	bits := flag.Int("bits", defaultBitDepth, "PCM bit depth: 16, 24 or 32")
	fullScale := flag.Float64("full-scale", defaultFull, "Sensor value of the largest PCM code")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly})))

	p := synth.Params{
		SampleRate:          *rate,
		HeartRateBPM:        *hr,
		RespiratoryRateBPM:  *rr,
		AmplitudeModulation: *am,
		BaselineWander:      *bw,
		FrequencyModulation: *fm,
		Noise:               *noise,
		Seed:                *seed,
	}

	n := int(duration.Seconds() * *rate)
	if err := writeTrace(args[0], p, n, *bits, *fullScale); err != nil {
		slog.Error("synthesis failed", "err", err)
		os.Exit(1)
	}
	slog.Info("trace written", "path", args[0], "samples", n, "rate", *rate, "hr", *hr, "rr", *rr)
}

// writeTrace generates n samples in chunks and writes them to path.
func writeTrace(path string, p synth.Params, n, bitDepth int, fullScale float64) error {
	if p.SampleRate != float64(int(p.SampleRate)) {
		return fmt.Errorf("sample rate must be a whole number of Hz, got %g", p.SampleRate)
	}

	w, err := wavio.Create(path, int(p.SampleRate), bitDepth, fullScale)
	if err != nil {
		return err
	}

	gen := synth.New(p)
	for written := 0; written < n; {
		values, _ := gen.Generate(min(writeChunk, n-written))
		if err := w.Write(values); err != nil {
			_ = w.Close()
			return err
		}
		written += len(values)
	}
	return w.Close()
}
