// Package clipstore keeps the last copied structure for a short time so a
// paste that follows a copy can reuse it
package clipstore

import (
	"sync"
	"time"
)

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// Store holds one value and the time it was stored. A value older than the
// TTL is stale and never returned.
type Store struct {
	mu       sync.Mutex
	clock    Clock
	ttl      time.Duration
	value    string
	storedAt time.Time
	set      bool
}

// New creates a Store. A nil clock means SystemClock.
func New(ttl time.Duration, clock Clock) *Store {
	if clock == nil {
		clock = SystemClock
	}
	return &Store{clock: clock, ttl: ttl}
}

// Set replaces the stored value and restarts its TTL
func (s *Store) Set(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.storedAt = s.clock.Now()
	s.set = true
}

// GetIfFresh returns the stored value while it is younger than the TTL
func (s *Store) GetIfFresh() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fresh()
}

// Take returns the fresh value and empties the store. A stale value is
// discarded as well.
func (s *Store) Take() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.fresh()
	s.reset()
	return v, ok
}

// Clear empties the store
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) fresh() (string, bool) {
	if !s.set {
		return "", false
	}
	if s.clock.Now().Sub(s.storedAt) >= s.ttl {
		return "", false
	}
	return s.value, true
}

func (s *Store) reset() {
	s.value = ""
	s.storedAt = time.Time{}
	s.set = false
}
