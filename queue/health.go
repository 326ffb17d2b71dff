package queue

import (
	"github.com/XANi/verisure2hub/bridge"
	"time"
)

type healthMessage struct {
	State       string     `json:"state"`
	Error       string     `json:"error,omitempty"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
}

func newHealthMessage(h bridge.Health) healthMessage {
	m := healthMessage{State: h.State.String(), Error: h.LastError}
	if !h.LastRefresh.IsZero() {
		ts := h.LastRefresh.UTC()
		m.LastRefresh = &ts
	}
	return m
}
