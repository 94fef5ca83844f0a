package clipstore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStore() (*Store, *fakeClock) {
	c := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(5*time.Second, c), c
}

func TestStore_EmptyIsNotFresh(t *testing.T) {
	s, _ := newStore()
	v, ok := s.GetIfFresh()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestStore_FreshThenStale(t *testing.T) {
	s, c := newStore()
	s.Set("CCO")

	c.Advance(4 * time.Second)
	v, ok := s.GetIfFresh()
	assert.True(t, ok)
	assert.Equal(t, "CCO", v)

	c.Advance(time.Second)
	_, ok = s.GetIfFresh()
	assert.False(t, ok)
}

func TestStore_SetRestartsTTL(t *testing.T) {
	s, c := newStore()
	s.Set("first")
	c.Advance(4 * time.Second)
	s.Set("second")
	c.Advance(4 * time.Second)

	v, ok := s.GetIfFresh()
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestStore_Take(t *testing.T) {
	s, c := newStore()
	s.Set("c1ccccc1")

	v, ok := s.Take()
	assert.True(t, ok)
	assert.Equal(t, "c1ccccc1", v)

	_, ok = s.Take()
	assert.False(t, ok)

	s.Set("stale")
	c.Advance(10 * time.Second)
	_, ok = s.Take()
	assert.False(t, ok)

	c.Advance(-10 * time.Second)
	_, ok = s.GetIfFresh()
	assert.False(t, ok, "stale value must be dropped by Take")
}

func TestStore_Clear(t *testing.T) {
	s, _ := newStore()
	s.Set("x")
	s.Clear()
	_, ok := s.GetIfFresh()
	assert.False(t, ok)
}

func TestNew_DefaultsToSystemClock(t *testing.T) {
	s := New(time.Minute, nil)
	s.Set("x")
	v, ok := s.GetIfFresh()
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}
