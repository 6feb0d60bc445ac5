// Package metrics counts named host events. The recorder is intentionally
// small: the host emits a handful of lifecycle metrics (telemetry wiring,
// restarts, scan outcomes) and surfaces them through the admin commands.
package metrics

import (
	"sort"
	"sync"
)

// Recorder receives named event counts from host components.
type Recorder interface {
	// Count increments the named counter by one.
	Count(name string)

	// Add increments the named counter by delta.
	Add(name string, delta int64)

	// Value returns the current value of the named counter.
	Value(name string) int64

	// Counts returns a snapshot of every counter.
	Counts() map[string]int64
}

// InMemoryRecorder implements Recorder with a guarded map.
type InMemoryRecorder struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewInMemoryRecorder creates an empty recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{counts: make(map[string]int64)}
}

// Count implements Recorder.
func (r *InMemoryRecorder) Count(name string) {
	r.Add(name, 1)
}

// Add implements Recorder.
func (r *InMemoryRecorder) Add(name string, delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[name] += delta
}

// Value implements Recorder.
func (r *InMemoryRecorder) Value(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.counts[name]
}

// Counts implements Recorder. The returned map is a copy.
func (r *InMemoryRecorder) Counts() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(r.counts))
	for name, value := range r.counts {
		out[name] = value
	}
	return out
}

// Names returns the counter names in sorted order.
func (r *InMemoryRecorder) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.counts))
	for name := range r.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
