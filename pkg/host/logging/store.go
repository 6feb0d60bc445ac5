package logging

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultLogStoreCapacity is the number of events kept per category
// when no capacity is given.
const DefaultLogStoreCapacity = 1000

// StoredEvent is one log event retained by the in-memory store.
type StoredEvent struct {
	Time     time.Time
	Category string
	Level    string
	Message  string
}

// LogStore keeps the most recent events per category in memory so they
// can be inspected after the fact without a file or remote sink. It is
// wired into the pipeline as the "store" provider.
type LogStore struct {
	mutex    sync.RWMutex
	capacity int
	events   map[string][]StoredEvent
}

// NewLogStore creates a store keeping up to capacity events per
// category.
func NewLogStore(capacity int) *LogStore {
	if capacity <= 0 {
		capacity = DefaultLogStoreCapacity
	}
	return &LogStore{
		capacity: capacity,
		events:   make(map[string][]StoredEvent),
	}
}

func (s *LogStore) add(event StoredEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	events := append(s.events[event.Category], event)
	if len(events) > s.capacity {
		events = events[len(events)-s.capacity:]
	}
	s.events[event.Category] = events
}

// Recent returns the retained events for a category, oldest first. A
// positive tail limits the result to the last tail events.
func (s *LogStore) Recent(category string, tail int) []StoredEvent {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.events[category]
	if tail > 0 && len(events) > tail {
		events = events[len(events)-tail:]
	}
	out := make([]StoredEvent, len(events))
	copy(out, events)
	return out
}

// Categories returns every category with retained events, sorted.
func (s *LogStore) Categories() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	categories := make([]string, 0, len(s.events))
	for category := range s.events {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

type storeCore struct {
	store *LogStore
}

func newStoreCore(store *LogStore) zapcore.Core {
	return &storeCore{store: store}
}

func (c *storeCore) Enabled(zapcore.Level) bool { return true }

func (c *storeCore) With([]zapcore.Field) zapcore.Core { return c }

func (c *storeCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return checked.AddCore(entry, c)
}

func (c *storeCore) Write(entry zapcore.Entry, _ []zapcore.Field) error {
	c.store.add(StoredEvent{
		Time:     entry.Time,
		Category: entry.LoggerName,
		Level:    entry.Level.String(),
		Message:  entry.Message,
	})
	return nil
}

func (c *storeCore) Sync() error { return nil }
