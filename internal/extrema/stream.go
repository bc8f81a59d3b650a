package extrema

import "math"

// Detector finds peaks one sample at a time. A candidate is the previous
// sample when it is a strict local maximum whose distance to both neighbours
// exceeds Threshold; it is accepted only if it lies more than MinIntervalMs
// after the last accepted peak.
type Detector struct {
	Threshold     float64
	MinIntervalMs int64

	prev2, prev1   float64
	prev1Ts        int64
	seen           int
	lastPeakTs     int64
	havePeak       bool
	peakTimestamps []int64
	peakValues     []float64
}

// NewDetector creates a streaming detector.
func NewDetector(threshold float64, minIntervalMs int64) *Detector {
	return &Detector{
		Threshold:     threshold,
		MinIntervalMs: minIntervalMs,
	}
}

// Push feeds one sample. When the previous sample is accepted as a peak it
// returns that peak's timestamp and true.
func (d *Detector) Push(v float64, tsMs int64) (int64, bool) {
	defer func() {
		d.prev2, d.prev1 = d.prev1, v
		d.prev1Ts = tsMs
		d.seen++
	}()

	if d.seen < 2 {
		return 0, false
	}

	c := d.prev1
	if !(c > d.prev2 && c > v) {
		return 0, false
	}
	if math.Abs(c-d.prev2) <= d.Threshold || math.Abs(c-v) <= d.Threshold {
		return 0, false
	}
	if d.havePeak && d.prev1Ts-d.lastPeakTs <= d.MinIntervalMs {
		return 0, false
	}

	d.lastPeakTs = d.prev1Ts
	d.havePeak = true
	d.peakTimestamps = append(d.peakTimestamps, d.prev1Ts)
	d.peakValues = append(d.peakValues, c)
	return d.prev1Ts, true
}

// PeakTimestamps returns the accepted peak timestamps in milliseconds.
func (d *Detector) PeakTimestamps() []int64 {
	return append([]int64(nil), d.peakTimestamps...)
}

// PeakValues returns the accepted peak amplitudes.
func (d *Detector) PeakValues() []float64 {
	return append([]float64(nil), d.peakValues...)
}

// Count returns the number of accepted peaks.
func (d *Detector) Count() int {
	return len(d.peakTimestamps)
}

// Reset forgets all history.
func (d *Detector) Reset() {
	*d = Detector{Threshold: d.Threshold, MinIntervalMs: d.MinIntervalMs}
}
