package ratelimit

import (
	"sync"
	"time"
)

// Store counts requests per key inside a fixed window. The middleware only
// ever reads and increments; windows expire on their own.
type Store interface {
	Get(key string) (count int, resetTime time.Time, exists bool)
	Increment(key string, resetTime time.Time) (count int)
}

// MemoryStore keeps the counters in process memory. Good enough for a single
// instance; a multi-instance deployment would need a shared backend.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*window
}

type window struct {
	count int
	until time.Time
}

func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		windows: make(map[string]*window),
	}

	go store.sweep()

	return store
}

// Get returns the live counter for the key. An expired window reads as
// absent, so a stale entry never blocks a request.
func (s *MemoryStore) Get(key string) (count int, resetTime time.Time, exists bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.windows[key]; ok && time.Now().Before(w.until) {
		return w.count, w.until, true
	}

	return 0, time.Time{}, false
}

// Increment bumps the counter, opening a fresh window at resetTime when the
// key has none or the old one has lapsed.
func (s *MemoryStore) Increment(key string, resetTime time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[key]; ok && time.Now().Before(w.until) {
		w.count++
		return w.count
	}

	s.windows[key] = &window{
		count: 1,
		until: resetTime,
	}

	return 1
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()

		for key, w := range s.windows {
			if now.After(w.until) {
				delete(s.windows, key)
			}
		}

		s.mu.Unlock()
	}
}
