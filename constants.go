package vitals

// Stream defaults
const (
	defaultSampleRate = 64.0 // Wristband BVP rate in Hz
	defaultQueueDepth = 4    // Async snapshots buffered per estimator
)

// Window size limits
const (
	minWindowSize = 16
	maxWindowSize = 1 << 16
)

// Heart-rate estimator defaults
const (
	defaultHeartRateWindow = 512
	defaultHeartRateLow    = 1.0 // ~60 BPM
	defaultHeartRateHigh   = 2.5 // ~150 BPM
	defaultHeartRateOrder  = 2
)

// Respiratory estimator defaults
const (
	defaultRespiratoryLow   = 0.1 // ~6 breaths/min
	defaultRespiratoryHigh  = 0.5 // ~30 breaths/min
	defaultRespiratoryOrder = 2

	wristbandRespiratoryWindow = 1280 // 20 s at 64 Hz
	compactRespiratoryWindow   = 256
	spectralRespiratoryWindow  = 256 // tuned for 125 Hz streams
)

// Extrema-fusion weights (sum to 1)
const (
	fusionWeightAM    = 0.5
	fusionWeightBW    = 0.2
	fusionWeightFM    = 0.2
	fusionWeightCount = 0.1
)

// Spectral fusion weights (sum to 1) and plausible range in breaths/min
const (
	spectralWeightAM   = 0.3
	spectralWeightBW   = 0.2
	spectralWeightFM   = 0.2
	spectralWeightRate = 0.3

	minPlausibleRespiratoryRate = 12.0
	maxPlausibleRespiratoryRate = 50.0
)

// Count-orig breath counting
const (
	countThresholdFactor = 0.2 // fraction of the upper-quartile peak value
)

// Blood-pressure estimator defaults
const (
	defaultPressureWindow = 1280 // 20 s at 64 Hz
	defaultPressureLow    = 0.8
	defaultPressureHigh   = 4.4
	defaultPressureOrder  = 4

	// Streaming peak detector used by the feature-regression strategy
	defaultPeakThreshold     = 1e-3
	defaultPeakMinIntervalMs = 300

	// Age band selecting the younger-adult regression
	youngAdultMinAge = 20
	youngAdultMaxAge = 40
)

// Unit conversion
const (
	secondsPerMinute = 60.0
	msPerSecond      = 1000.0
)
