// Package wavio stores BVP recordings as PCM WAV files. The first channel
// carries the sensor values, quantized against a configurable full-scale
// value so that a recording round-trips through any WAV tool.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-bvp-vitals/internal/simdops"
)

const (
	pcmFormat       = 1
	chunkFrames     = 4096
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	maxInt16        = 32767.0
	maxInt24        = 8388607.0
	maxInt32        = 2147483647.0

	// DefaultFullScale maps the largest PCM code to this sensor value.
	DefaultFullScale = 1024.0
)

// ErrInvalidFile is returned for inputs that are not PCM WAV.
var ErrInvalidFile = errors.New("invalid WAV file")

// maxValue returns the largest code for a bit depth.
func maxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
}

// Reader streams sensor values from a WAV file.
type Reader struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	scale    float32
	buf      *audio.IntBuffer
	pending  []float32
}

// Open opens a WAV recording. fullScale is the sensor value of the largest
// PCM code; zero selects DefaultFullScale.
func Open(path string, fullScale float64) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	maxVal, err := maxValue(bitDepth)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}
	if fullScale == 0 {
		fullScale = DefaultFullScale
	}

	return &Reader{
		file:     f,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		scale:    float32(fullScale / maxVal),
		buf: &audio.IntBuffer{
			Data:   make([]int, chunkFrames*format.NumChannels),
			Format: format,
		},
	}, nil
}

// SampleRate returns the recording rate in Hz.
func (r *Reader) SampleRate() int { return r.rate }

// Channels returns the channel count. Only the first channel is read.
func (r *Reader) Channels() int { return r.channels }

// BitDepth returns the PCM bit depth.
func (r *Reader) BitDepth() int { return r.bitDepth }

// Read fills dst with the next values and returns how many were written.
// It returns io.EOF once the recording is exhausted.
func (r *Reader) Read(dst []float32) (int, error) {
	if len(r.pending) == 0 {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(dst, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *Reader) fill() error {
	r.buf.Data = r.buf.Data[:cap(r.buf.Data)]
	n, err := r.decoder.PCMBuffer(r.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read audio data: %w", err)
	}
	frames := n / max(r.channels, 1)
	if frames == 0 {
		return io.EOF
	}

	out := make([]float32, frames)
	for i := range frames {
		out[i] = float32(r.buf.Data[i*r.channels])
	}
	simdops.For[float32]().Scale(out, out, r.scale)
	r.pending = out
	return nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Recording is a fully loaded BVP trace.
type Recording struct {
	SampleRate int
	Values     []float32
}

// ReadAll loads a whole recording.
func ReadAll(path string, fullScale float64) (*Recording, error) {
	r, err := Open(path, fullScale)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	rec := &Recording{SampleRate: r.SampleRate()}
	chunk := make([]float32, chunkFrames)
	for {
		n, err := r.Read(chunk)
		rec.Values = append(rec.Values, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			return rec, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Writer writes a mono BVP recording.
type Writer struct {
	file    *os.File
	encoder *wav.Encoder
	format  *audio.Format
	maxVal  float64
	inv     float64
	ints    []int
}

// Create creates a mono PCM WAV file. fullScale is the sensor value written
// as the largest PCM code; zero selects DefaultFullScale. Values beyond full
// scale are clipped.
func Create(path string, sampleRate, bitDepth int, fullScale float64) (*Writer, error) {
	maxVal, err := maxValue(bitDepth)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if fullScale == 0 {
		fullScale = DefaultFullScale
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, bitDepth, 1, pcmFormat),
		format:  &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		maxVal:  maxVal,
		inv:     maxVal / fullScale,
	}, nil
}

// Write appends values to the recording.
func (w *Writer) Write(values []float32) error {
	if cap(w.ints) < len(values) {
		w.ints = make([]int, len(values))
	}
	w.ints = w.ints[:len(values)]

	for i, v := range values {
		code := math.Round(float64(v) * w.inv)
		w.ints[i] = int(max(-w.maxVal, min(w.maxVal, code)))
	}

	if err := w.encoder.Write(&audio.IntBuffer{Data: w.ints, Format: w.format}); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}
