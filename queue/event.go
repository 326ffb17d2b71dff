package queue

import "github.com/XANi/verisure2hub/bridge"

type hubEvent struct {
	EventType string                `json:"event_type"`
	Data      bridge.DiscoveryEvent `json:"data"`
}
