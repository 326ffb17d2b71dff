package bridge

import (
	"sync"
	"time"
)

type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
	// PermanentlyLocked is terminal.
	PermanentlyLocked
)

func (s SessionState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case PermanentlyLocked:
		return "locked"
	default:
		return "unknown"
	}
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Health is what other components can observe about the vendor session.
type Health struct {
	State       SessionState `json:"state"`
	LastError   string       `json:"last_error,omitempty"`
	LastAttempt time.Time    `json:"last_attempt,omitzero"`
	LastRefresh time.Time    `json:"last_refresh,omitzero"`
}

// HealthObserver is called synchronously on every health change, so it must not block
// or call back into the bridge.
type HealthObserver func(Health)

type healthTracker struct {
	mu        sync.RWMutex
	h         Health
	observers []HealthObserver
}

func (t *healthTracker) get() Health {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.h
}

func (t *healthTracker) state() SessionState {
	return t.get().State
}

func (t *healthTracker) subscribe(fn HealthObserver) {
	t.mu.Lock()
	t.observers = append(t.observers, fn)
	t.mu.Unlock()
}

// update applies fn to the current health and notifies observers.
// A locked session never leaves PermanentlyLocked.
func (t *healthTracker) update(fn func(h *Health)) {
	t.mu.Lock()
	prev := t.h.State
	fn(&t.h)
	if prev == PermanentlyLocked {
		t.h.State = PermanentlyLocked
	}
	h := t.h
	observers := append([]HealthObserver(nil), t.observers...)
	t.mu.Unlock()
	for _, o := range observers {
		o(h)
	}
}
