package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	vitals "github.com/tphakala/go-bvp-vitals"
	"github.com/tphakala/go-bvp-vitals/internal/config"
)

const (
	readChunk   = 64
	msPerSecond = 1000.0
)

// flagOverrides carries command-line values that win over the config file.
type flagOverrides struct {
	age       int
	broker    string
	httpAddr  string
	realtime  bool
	fullScale float64
}

func applyFlags(f *config.File, o flagOverrides) {
	if o.age != unsetAge {
		f.BloodPressure.Age = o.age
	}
	if o.broker != "" {
		f.MQTT.Broker = o.broker
	}
	if o.httpAddr != "" {
		f.HTTP.Addr = o.httpAddr
	}
	if o.realtime {
		f.Recording.Realtime = true
	}
	if o.fullScale != 0 {
		f.Recording.FullScale = o.fullScale
	}
}

// sampleReader is the part of wavio.Reader the stream needs.
type sampleReader interface {
	Read(dst []float32) (int, error)
}

// streamSamples reads the recording into out, stamping each sample with its
// position in milliseconds. It closes out when done.
func streamSamples(ctx context.Context, r sampleReader, rate float64, realtime bool, out chan<- vitals.Sample) error {
	defer close(out)

	var (
		n     int64
		buf   = make([]float32, readChunk)
		pace  *time.Ticker
		start = time.Now()
	)
	if realtime {
		pace = time.NewTicker(time.Duration(float64(readChunk) / rate * float64(time.Second)))
		defer pace.Stop()
	}

	for {
		got, err := r.Read(buf)
		for _, v := range buf[:got] {
			s := vitals.Sample{Value: v, TimestampMs: int64(float64(n) * msPerSecond / rate)}
			n++
			select {
			case out <- s:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read recording after %s: %w", time.Since(start), err)
		}

		if pace != nil {
			select {
			case <-pace.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func formatReading(r vitals.Reading) string {
	at := time.Duration(r.TimestampMs) * time.Millisecond
	var body string
	switch r.Metric {
	case vitals.MetricBloodPressure:
		body = fmt.Sprintf("%.1f/%.1f mmHg", r.Systolic, r.Diastolic)
	case vitals.MetricRespiratoryRate:
		body = fmt.Sprintf("%.1f breaths/min", r.Value)
	default:
		body = fmt.Sprintf("%.1f BPM", r.Value)
	}
	if r.Err != nil {
		body += " (" + r.Err.Error() + ")"
	}
	return fmt.Sprintf("%10s  %-16s #%-4d %s", at, r.Metric, r.Cycle, body)
}
