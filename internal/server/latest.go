package server

import (
	"sync"

	vitals "github.com/tphakala/go-bvp-vitals"
)

// Latest keeps the most recent reading per metric.
type Latest struct {
	mu       sync.RWMutex
	readings map[vitals.Metric]vitals.Reading
}

// NewLatest creates an empty store.
func NewLatest() *Latest {
	return &Latest{readings: make(map[vitals.Metric]vitals.Reading)}
}

// Update records r, replacing the previous reading of the same metric.
func (l *Latest) Update(r vitals.Reading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readings[r.Metric] = r
}

// Get returns the latest reading for m.
func (l *Latest) Get(m vitals.Metric) (vitals.Reading, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.readings[m]
	return r, ok
}

// All returns the latest readings in metric order.
func (l *Latest) All() []vitals.Reading {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]vitals.Reading, 0, len(l.readings))
	for _, m := range []vitals.Metric{vitals.MetricHeartRate, vitals.MetricRespiratoryRate, vitals.MetricBloodPressure} {
		if r, ok := l.readings[m]; ok {
			out = append(out, r)
		}
	}
	return out
}
