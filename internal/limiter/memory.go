package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type counter struct {
	fails        int
	last         time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter. Entries expire once both the window and
// any block have passed.
type Memory struct {
	mu       sync.Mutex
	c        *cache.Cache
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-process limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	ttl := window + blockFor
	return &Memory{
		c:        cache.New(ttl, 2*ttl),
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

func (m *Memory) get(subject string) counter {
	if v, ok := m.c.Get(subject); ok {
		return v.(counter)
	}
	return counter{}
}

// Allow reports whether an attempt is allowed and a retry-after duration.
func (m *Memory) Allow(_ context.Context, subject string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.get(subject).blockedUntil.Sub(m.now()); d > 0 {
		return false, d, nil
	}
	return true, 0, nil
}

// Success forgets subject.
func (m *Memory) Success(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.Delete(subject)
	return nil
}

// Failure records a failed attempt; may place a block.
func (m *Memory) Failure(_ context.Context, subject string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	c := m.get(subject)
	if now.Sub(c.last) > m.window {
		c.fails = 0
	}
	c.fails++
	c.last = now
	blocked := c.fails >= m.maxFails
	if blocked {
		c.blockedUntil = now.Add(m.blockFor)
	}
	m.c.SetDefault(subject, c)
	if blocked {
		return true, m.blockFor, nil
	}
	return false, 0, nil
}
