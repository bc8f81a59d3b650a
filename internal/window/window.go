// Package window provides the fixed-capacity sample windows the estimators
// accumulate into before each compute cycle.
package window

import (
	"sync"
)

// Mode selects what a window keeps after it fills.
type Mode int

const (
	// Overlap retains the newest half of the samples, giving 50% overlap
	// between consecutive full windows.
	Overlap Mode = iota

	// Reset discards everything, so consecutive windows never share samples.
	Reset
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Overlap:
		return "overlap"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// minCapacity keeps the half-window retention meaningful.
const minCapacity = 2

// Sliding is a fixed-capacity, mutex-guarded sample window.
//
// Push appends one sample. When occupancy reaches capacity the window emits
// a copy of all samples and then either keeps samples [N/2, N) with occupancy
// N/2 (Overlap) or empties itself (Reset).
type Sliding[T any] struct {
	data     []T
	capacity int
	size     int
	mode     Mode
	fills    uint64
	mu       sync.Mutex
}

// New creates a window with the given capacity and retention mode.
// Capacities below 2 are raised to 2.
func New[T any](capacity int, mode Mode) *Sliding[T] {
	if capacity < minCapacity {
		capacity = minCapacity
	}

	return &Sliding[T]{
		data:     make([]T, capacity),
		capacity: capacity,
		mode:     mode,
	}
}

// Push appends v. When the window becomes full it returns a snapshot of the
// N samples and true; the snapshot is never written to again.
func (w *Sliding[T]) Push(v T) ([]T, bool) {
	var (
		snapshot []T
		full     bool
	)
	w.PushFunc(v, func(s []T) {
		snapshot = s
		full = true
	})
	return snapshot, full
}

// PushFunc appends v and, when the window fills, calls onFull with the
// snapshot before shifting. onFull runs with the window lock held, so the
// producer is blocked until it returns and fills are handled in arrival order.
func (w *Sliding[T]) PushFunc(v T, onFull func(snapshot []T)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.data[w.size] = v
	w.size++
	if w.size < w.capacity {
		return
	}

	snapshot := make([]T, w.capacity)
	copy(snapshot, w.data)
	w.fills++

	// Shift even if onFull panics, so the window never stays full.
	defer w.shift()

	if onFull != nil {
		onFull(snapshot)
	}
}

// shift applies the retention policy after a fill.
func (w *Sliding[T]) shift() {
	if w.mode == Reset {
		w.size = 0
		return
	}

	half := w.capacity / 2
	n := copy(w.data, w.data[w.capacity-half:])
	w.size = n
}

// Len returns the current occupancy.
func (w *Sliding[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Capacity returns N.
func (w *Sliding[T]) Capacity() int {
	return w.capacity
}

// Mode returns the retention mode.
func (w *Sliding[T]) Mode() Mode {
	return w.mode
}

// Fills returns how many times the window has filled.
func (w *Sliding[T]) Fills() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fills
}

// Contents returns a copy of the buffered samples in arrival order.
func (w *Sliding[T]) Contents() []T {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]T, w.size)
	copy(out, w.data[:w.size])
	return out
}

// Clear removes all samples.
func (w *Sliding[T]) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	clear(w.data)
	w.size = 0
}
