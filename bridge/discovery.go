package bridge

import (
	"context"
	"fmt"
	"sync"
)

// EventPlatformDiscovered is fired once per entity platform the bridge provides.
const EventPlatformDiscovered = "platform_discovered"

const (
	DiscoverSensors  = "verisure.sensors"
	DiscoverSwitches = "verisure.switches"
)

// DiscoveryEvent is the payload of EventPlatformDiscovered.
type DiscoveryEvent struct {
	Service    string         `json:"service"`
	Discovered map[string]any `json:"discovered"`
}

// Hub is the part of the home-automation hub the bridge announces itself to.
type Hub interface {
	// SetupComponent makes sure the hub's platform for the entity kind is loaded.
	SetupComponent(ctx context.Context, kind string) error
	Fire(ctx context.Context, eventType string, event DiscoveryEvent) error
}

type discoveryTarget struct {
	kind  string
	topic string
}

var discoveryTargets = []discoveryTarget{
	{kind: "sensor", topic: DiscoverSensors},
	{kind: "switch", topic: DiscoverSwitches},
}

// DiscoveryPublisher tells the hub which entity platforms exist. It only ever does it once.
type DiscoveryPublisher struct {
	hub  Hub
	once sync.Once
	err  error
}

func NewDiscoveryPublisher(hub Hub) *DiscoveryPublisher {
	return &DiscoveryPublisher{hub: hub}
}

// PublishAll emits one discovery event per platform. Calls after the first return the first
// call's result without contacting the hub.
func (d *DiscoveryPublisher) PublishAll(ctx context.Context) error {
	d.once.Do(func() {
		for _, t := range discoveryTargets {
			if err := d.hub.SetupComponent(ctx, t.kind); err != nil {
				d.err = fmt.Errorf("setting up %s platform: %w", t.kind, err)
				return
			}
			ev := DiscoveryEvent{Service: t.topic, Discovered: map[string]any{}}
			if err := d.hub.Fire(ctx, EventPlatformDiscovered, ev); err != nil {
				d.err = fmt.Errorf("announcing %s: %w", t.topic, err)
				return
			}
		}
	})
	return d.err
}
