package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store tracks request counts in fixed windows. Incr atomically increments the
// counter for key within the current window and returns the post-increment
// count plus the instant the window resets.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, reset time.Time, err error)
}

type memoryEntry struct {
	windowStart time.Time
	count       int
	lastSeen    time.Time
}

// MemoryStore is an in-process fixed-window store. Counters are keyed by
// (clientKey, class) strings and partitioned behind one mutex; entries idle
// past the TTL are evicted by a janitor goroutine.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	idleTTL time.Duration
	now     func() time.Time
}

// NewMemoryStore creates the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		idleTTL: 30 * time.Minute,
		now:     time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Incr implements Store. The increment-and-read happens under the lock, so two
// concurrent requests for the same key can never both observe a pre-increment
// count.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()
	windowStart := now.Truncate(window)

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !ent.windowStart.Equal(windowStart) {
		ent = &memoryEntry{windowStart: windowStart}
		s.entries[key] = ent
	}
	ent.count++
	ent.lastSeen = now

	return ent.count, windowStart.Add(window), nil
}

// StartJanitor evicts idle entries periodically until the context is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.cleanup()
			}
		}
	}()
}

func (s *MemoryStore) cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}
