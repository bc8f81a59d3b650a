package features

const (
	msPerSecond      = 1000.0
	secondsPerMinute = 60.0
)

// PulseTransitTime returns the time in seconds between the two most recent
// peak timestamps, or 0 with fewer than two peaks.
func PulseTransitTime(peakTimesMs []int64) float64 {
	n := len(peakTimesMs)
	if n < 2 {
		return 0
	}
	return float64(peakTimesMs[n-1]-peakTimesMs[n-2]) / msPerSecond
}

// HeartRateFromPeakTimes returns (count − 1)·60 / duration, where duration
// spans the first to the last peak. It returns 0 with fewer than two peaks or
// a non-positive span.
func HeartRateFromPeakTimes(peakTimesMs []int64) float64 {
	n := len(peakTimesMs)
	if n < 2 {
		return 0
	}

	duration := float64(peakTimesMs[n-1]-peakTimesMs[0]) / msPerSecond
	if duration <= 0 {
		return 0
	}
	return float64(n-1) * secondsPerMinute / duration
}

// RateFromMeanInterval converts a mean index interval to events per minute
// at the given sample rate, or 0 when the interval is not positive.
func RateFromMeanInterval(sampleRate, meanInterval float64) float64 {
	if meanInterval <= 0 {
		return 0
	}
	return sampleRate * secondsPerMinute / meanInterval
}
