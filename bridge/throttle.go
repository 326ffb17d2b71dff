package bridge

import (
	"github.com/benbjohnson/clock"
	"sync"
	"time"
)

// MinTimeBetweenRequests is the default floor between two vendor fetches.
const MinTimeBetweenRequests = 5 * time.Second

// Throttle allows an action at most once per interval.
type Throttle struct {
	clock    clock.Clock
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

func NewThrottle(c clock.Clock, interval time.Duration) *Throttle {
	if c == nil {
		c = clock.New()
	}
	return &Throttle{clock: c, interval: interval}
}

// Allow reports whether the interval since the last allowed call has passed,
// and if so starts a new interval.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// Last returns when Allow last returned true.
func (t *Throttle) Last() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
