// Package vitals estimates heart rate, respiratory rate and blood pressure
// from a wearable blood-volume-pulse (BVP) stream.
//
// Each estimator buffers samples into a fixed window. When the window fills
// it band-passes the window with a Butterworth filter, detects peaks and
// troughs, extracts features and computes a reading. The heart-rate window is
// emptied after every cycle; the respiratory and blood-pressure windows keep
// their newest half, so consecutive cycles overlap by 50%.
//
// # Quick Start
//
//	p, err := vitals.NewPipeline(vitals.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//	p.SetAge(30)
//
//	for s := range sensor {
//	    p.OnSample(s.Value, s.TimestampMs)
//	    for _, r := range p.Poll() {
//	        store(r)
//	    }
//	}
//
// # Readiness
//
// Every estimator implements [Estimator]. IsReady reports a completed cycle
// and Read returns it exactly once, clearing readiness. Reads never block on
// the producer; the latest reading is published through a single atomic
// handle.
//
// # Errors
//
// Invalid filter bands and window sizes fail at construction with
// [ErrInvalidConfig]. Failures inside a compute cycle, including panics,
// never reach the producer: the reading is zero and readiness is still set.
// Windows without enough structure, such as fewer than two peaks, also read
// as zero. [Classify] separates these cases, and [PolicySurface] attaches
// transient failures to [Reading.Err].
//
// # Strategies
//
// Respiratory rate is estimated by extrema fusion (default) or by the
// spectral dominant frequency; blood pressure by median-pins regression
// (default) or by a linear model over the full feature vector. The active
// strategy is always explicit in [Config].
package vitals
