package vitals

import (
	"context"
	"errors"
	"fmt"
)

// Pipeline feeds one BVP stream to the heart-rate, respiratory-rate and
// blood-pressure estimators. The estimators are independent; there is no
// ordering between their cycles.
//
// OnSample and Push must be called from a single producer goroutine.
type Pipeline struct {
	heart    *HeartRateEstimator
	resp     *RespiratoryEstimator
	pressure *BloodPressureEstimator
	all      []Estimator
}

// NewPipeline validates cfg and constructs all three estimators. A nil cfg
// selects DefaultConfig.
func NewPipeline(cfg *Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	heart, err := NewHeartRateEstimator(cfg)
	if err != nil {
		return nil, fmt.Errorf("heart rate estimator: %w", err)
	}
	resp, err := NewRespiratoryEstimator(cfg)
	if err != nil {
		_ = heart.Close()
		return nil, fmt.Errorf("respiratory estimator: %w", err)
	}
	pressure, err := NewBloodPressureEstimator(cfg)
	if err != nil {
		_ = heart.Close()
		_ = resp.Close()
		return nil, fmt.Errorf("blood pressure estimator: %w", err)
	}

	cfg.logger().Debug("pipeline ready",
		"sample_rate", cfg.SampleRate,
		"respiratory_strategy", cfg.Respiratory.Strategy.String(),
		"blood_pressure_strategy", cfg.BloodPressure.Strategy.String(),
		"async", cfg.Async)

	return &Pipeline{
		heart:    heart,
		resp:     resp,
		pressure: pressure,
		all:      []Estimator{heart, resp, pressure},
	}, nil
}

// OnSample is the device-facing input boundary.
func (p *Pipeline) OnSample(value float32, timestampMs int64) {
	p.Push(Sample{Value: value, TimestampMs: timestampMs})
}

// Push forwards s to every estimator.
func (p *Pipeline) Push(s Sample) {
	for _, e := range p.all {
		e.Push(s)
	}
}

// Poll reads every estimator that is ready, in heart-rate, respiratory,
// blood-pressure order.
func (p *Pipeline) Poll() []Reading {
	var out []Reading
	for _, e := range p.all {
		if e.IsReady() {
			out = append(out, e.Read())
		}
	}
	return out
}

// Run pushes samples until the channel closes or ctx is cancelled, passing
// every ready reading to fn after each sample. Closing the channel returns
// nil; cancellation returns the context error. With Async set, readings still
// queued when Run returns are available from Poll after Close.
func (p *Pipeline) Run(ctx context.Context, samples <-chan Sample, fn func(Reading)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-samples:
			if !ok {
				return nil
			}
			p.Push(s)
			for _, r := range p.Poll() {
				fn(r)
			}
		}
	}
}

// SetAge forwards the user's age to the blood-pressure estimator.
func (p *Pipeline) SetAge(age int) { p.pressure.SetAge(age) }

// HeartRate returns the heart-rate estimator.
func (p *Pipeline) HeartRate() *HeartRateEstimator { return p.heart }

// Respiratory returns the respiratory-rate estimator.
func (p *Pipeline) Respiratory() *RespiratoryEstimator { return p.resp }

// BloodPressure returns the blood-pressure estimator.
func (p *Pipeline) BloodPressure() *BloodPressureEstimator { return p.pressure }

// Estimators returns all estimators in polling order.
func (p *Pipeline) Estimators() []Estimator {
	return append([]Estimator(nil), p.all...)
}

// Close stops async workers after they drain their queues.
func (p *Pipeline) Close() error {
	var errs []error
	for _, e := range p.all {
		errs = append(errs, e.Close())
	}
	return errors.Join(errs...)
}
