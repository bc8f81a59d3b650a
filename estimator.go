package vitals

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/go-bvp-vitals/internal/window"
)

// Sample is one BVP reading.
type Sample struct {
	// Value is the raw sensor value.
	Value float32

	// TimestampMs is milliseconds since an arbitrary epoch. Zero timestamps
	// are replaced by positions derived from the sample rate where elapsed
	// time is needed.
	TimestampMs int64
}

// Metric identifies what an estimator measures.
type Metric int

const (
	MetricHeartRate Metric = iota
	MetricRespiratoryRate
	MetricBloodPressure
)

// String returns the metric name used in logs, topics and metrics labels.
func (m Metric) String() string {
	switch m {
	case MetricHeartRate:
		return "heart_rate"
	case MetricRespiratoryRate:
		return "respiratory_rate"
	case MetricBloodPressure:
		return "blood_pressure"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric maps a metric name back to a Metric.
func ParseMetric(s string) (Metric, bool) {
	for _, m := range []Metric{MetricHeartRate, MetricRespiratoryRate, MetricBloodPressure} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Reading is the result of one compute cycle.
type Reading struct {
	Metric Metric

	// Value is beats per minute for heart rate and breaths per minute for
	// respiratory rate. Unused for blood pressure.
	Value float64

	// Systolic and Diastolic are in mmHg. Only set for blood pressure.
	Systolic  float64
	Diastolic float64

	// TimestampMs is the timestamp of the newest sample in the window.
	TimestampMs int64

	// Cycle counts compute cycles of this estimator, starting at 1.
	Cycle uint64

	// Err is set only under PolicySurface after a transient failure.
	Err error
}

// Estimator is the readiness contract every estimator exposes.
//
// Push is called by a single producer. IsReady and Read may be called from
// any goroutine; Read returns each completed cycle exactly once and clears
// readiness. Reading before any cycle completes returns the zero reading.
type Estimator interface {
	Metric() Metric
	Push(s Sample)
	IsReady() bool
	Read() Reading
	Close() error
}

// CycleReport describes one completed compute cycle.
type CycleReport struct {
	Reading  Reading
	Class    ErrorClass
	Err      error
	Duration time.Duration
}

// Observer is notified after every compute cycle, on the goroutine that ran it.
type Observer interface {
	ObserveCycle(report CycleReport)
}

// computeFunc turns one full window into a reading.
type computeFunc func(snapshot []Sample) (Reading, error)

// runner owns the window, the readiness handle and the optional async worker
// shared by all estimators.
type runner struct {
	metric   Metric
	win      *window.Sliding[Sample]
	compute  computeFunc
	policy   ErrorPolicy
	logger   *slog.Logger
	observer Observer

	// pending holds a completed reading until Read takes it; latest keeps
	// the most recent one for repeated reads.
	pending atomic.Pointer[Reading]
	latest  atomic.Pointer[Reading]
	cycles  atomic.Uint64

	queueMu   sync.Mutex
	queue     chan []Sample
	done      chan struct{}
	closed    bool
	closeOnce sync.Once
}

func newRunner(metric Metric, cfg *Config, capacity int, mode window.Mode, compute computeFunc) *runner {
	r := &runner{
		metric:   metric,
		win:      window.New[Sample](capacity, mode),
		compute:  compute,
		policy:   cfg.ErrorPolicy,
		logger:   cfg.logger().With("estimator", metric.String()),
		observer: cfg.Observer,
	}

	if cfg.Async {
		r.queue = make(chan []Sample, cfg.queueDepth())
		r.done = make(chan struct{})
		go r.work()
	}

	return r
}

func (r *runner) push(s Sample) {
	r.win.PushFunc(s, r.onFull)
}

// onFull runs with the window lock held.
func (r *runner) onFull(snapshot []Sample) {
	if r.queue == nil {
		r.run(snapshot)
		return
	}

	r.queueMu.Lock()
	defer r.queueMu.Unlock()
	if r.closed {
		r.logger.Warn("window dropped after close", "samples", len(snapshot))
		return
	}
	r.queue <- snapshot
}

func (r *runner) work() {
	defer close(r.done)
	for snapshot := range r.queue {
		r.run(snapshot)
	}
}

// run executes one compute cycle and publishes its reading.
func (r *runner) run(snapshot []Sample) {
	start := time.Now()
	reading, err := r.safeCompute(snapshot)
	elapsed := time.Since(start)

	class := Classify(err)
	if class != ClassNone {
		reading = Reading{}
	}

	reading.Metric = r.metric
	reading.Cycle = r.cycles.Add(1)
	if n := len(snapshot); n > 0 {
		reading.TimestampMs = snapshot[n-1].TimestampMs
	}

	switch class {
	case ClassDegenerate:
		r.logger.Debug("degenerate window", "cycle", reading.Cycle, "err", err)
	case ClassTransient, ClassConstruction:
		r.logger.Warn("compute failed, reporting zero", "cycle", reading.Cycle, "err", err)
		if r.policy == PolicySurface {
			reading.Err = err
		}
	}

	r.latest.Store(&reading)
	r.pending.Store(&reading)

	if r.observer != nil {
		r.notify(CycleReport{
			Reading:  reading,
			Class:    class,
			Err:      err,
			Duration: elapsed,
		})
	}
}

// notify hands report to the observer. A panicking observer is logged and
// never reaches the producer.
func (r *runner) notify(report CycleReport) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("observer panicked", "cycle", report.Reading.Cycle, "panic", p)
		}
	}()
	r.observer.ObserveCycle(report)
}

func (r *runner) safeCompute(snapshot []Sample) (reading Reading, err error) {
	defer recoverCompute(&err)
	return r.compute(snapshot)
}

func (r *runner) isReady() bool {
	return r.pending.Load() != nil
}

func (r *runner) read() Reading {
	if p := r.pending.Swap(nil); p != nil {
		return *p
	}
	if p := r.latest.Load(); p != nil {
		return *p
	}
	return Reading{Metric: r.metric}
}

// close stops the async worker after it drains queued windows.
func (r *runner) close() error {
	r.closeOnce.Do(func() {
		if r.queue == nil {
			return
		}
		r.queueMu.Lock()
		r.closed = true
		close(r.queue)
		r.queueMu.Unlock()
		<-r.done
	})
	return nil
}

// values widens the snapshot values for filtering.
func values(snapshot []Sample) []float64 {
	out := make([]float64, len(snapshot))
	for i, s := range snapshot {
		out[i] = float64(s.Value)
	}
	return out
}

// timestamps returns per-sample times in ms. When the snapshot carries no
// usable clock (non-increasing timestamps), times are derived from the
// sample index and rate, anchored at the first timestamp.
func timestamps(snapshot []Sample, sampleRate float64) []int64 {
	out := make([]int64, len(snapshot))
	monotonic := true
	for i, s := range snapshot {
		out[i] = s.TimestampMs
		if i > 0 && s.TimestampMs <= snapshot[i-1].TimestampMs {
			monotonic = false
		}
	}
	if monotonic && len(snapshot) > 1 {
		return out
	}

	var base int64
	if len(snapshot) > 0 {
		base = snapshot[0].TimestampMs
	}
	for i := range out {
		out[i] = base + int64(float64(i)*msPerSecond/sampleRate)
	}
	return out
}
