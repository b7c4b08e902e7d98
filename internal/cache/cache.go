// Package cache provides an in-memory response cache keyed by normalized question.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Store memoizes values per normalized question with TTL expiry and a bounded
// capacity. Expired entries are removed lazily on read; when the store is
// full, the entry with the oldest insertion time is evicted before a new key
// is inserted. Reads and writes go through the clone function so callers can
// mutate what they receive without touching the stored snapshot.
//
// Safe for concurrent use.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	maxSize int
	clone   func(V) V
	now     func() time.Time
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Option is a functional option for configuring a Store.
type Option[V any] func(*Store[V])

// WithClock overrides the time source used for TTL and eviction decisions.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *Store[V]) {
		s.now = now
	}
}

// New creates a store. clone may be nil for value types without reference
// fields; otherwise it must return a deep copy.
func New[V any](ttl time.Duration, maxSize int, clone func(V) V, opts ...Option[V]) *Store[V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	s := &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		clone:   clone,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the cache key for a question: sha256 over the case-folded,
// trimmed text. Uniqueness, not secrecy, is the requirement.
func Key(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the cached value for the question, if present and not
// expired. Expired entries are deleted on the spot.
func (s *Store[V]) Get(question string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	key := Key(question)
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if s.now().Sub(e.insertedAt) > s.ttl {
		delete(s.entries, key)
		return zero, false
	}
	return s.clone(e.value), true
}

// Set stores a snapshot of the value for the question, evicting the oldest
// entry first if the store is at capacity.
func (s *Store[V]) Set(question string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(question)
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}
	s.entries[key] = entry[V]{value: s.clone(value), insertedAt: s.now()}
}

// Len returns the current number of entries, including any not yet lazily
// expired.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictOldest removes the entry with the earliest insertion time.
// Caller must hold the lock.
func (s *Store[V]) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range s.entries {
		if oldestKey == "" || e.insertedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.insertedAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
