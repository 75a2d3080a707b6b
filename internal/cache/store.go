// Package cache provides the process-wide TTL cache the Data Access Layer
// owns (spec.md §3, §5 and Design Notes §9: "model as an explicit Cache<K,V>
// value ... constructed at start-up; administrative invalidation is a
// method on that component, not process-global state").
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store[T] is a typed, TTL-bounded key-value cache. It is backed by
// patrickmn/go-cache for expiry bookkeeping and sweeping, and adds the
// typed get/set contract plus a last-read timestamp the Design Notes call
// for, per key.
type Store[T any] struct {
	ttl  time.Duration
	raw  *gocache.Cache
	mu   sync.Mutex
	read map[string]time.Time
}

// NewStore creates a Store with the given default TTL. cleanupInterval
// controls how often expired entries are purged; passing 0 disables
// background cleanup (entries still expire, just lazily on Get).
func NewStore[T any](ttl, cleanupInterval time.Duration) *Store[T] {
	return &Store[T]{
		ttl:  ttl,
		raw:  gocache.New(ttl, cleanupInterval),
		read: make(map[string]time.Time),
	}
}

// Get returns the cached value for key and whether it was present and
// unexpired. It records the read time for administrative inspection.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := s.raw.Get(key)
	if !ok {
		return zero, false
	}
	s.mu.Lock()
	s.read[key] = time.Now()
	s.mu.Unlock()

	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores value under key using the store's default TTL. Last writer
// wins, per spec.md §5's single-writer-per-key policy.
func (s *Store[T]) Set(key string, value T) {
	s.raw.SetDefault(key, value)
}

// LastRead returns when key was last read via Get, if ever.
func (s *Store[T]) LastRead(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.read[key]
	return t, ok
}

// Invalidate clears every entry in the store. This is the administrative
// operation spec.md §5 describes as invalidate_caches, scoped per-store.
func (s *Store[T]) Invalidate() {
	s.raw.Flush()
	s.mu.Lock()
	s.read = make(map[string]time.Time)
	s.mu.Unlock()
}
