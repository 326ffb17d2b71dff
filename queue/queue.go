package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/XANi/verisure2hub/bridge"
	"github.com/XANi/verisure2hub/verisure"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"maps"
	"net/url"
	"slices"
	"sync"
	"time"
)

const DefaultPrefix = "verisure2hub"

const publishTimeout = 10 * time.Second

// Queue is the MQTT side of the bridge: it announces platforms, fires hub events
// and publishes device state and session health.
type Queue struct {
	client mqtt.Client
	prefix string
	l      *zap.SugaredLogger
	loaded map[string]bool
	sync.RWMutex
}

type Config struct {
	MQTTAddr string
	// Prefix for every topic, DefaultPrefix when empty
	Prefix string
	Logger *zap.SugaredLogger
	Debug  bool
}

func New(cfg *Config) (*Queue, error) {
	mqttURL, err := url.Parse(cfg.MQTTAddr)
	if err != nil {
		return nil, fmt.Errorf("cannot parse MQTT URL: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	p, _ := mqttURL.User.Password()
	lwt, _ := json.Marshal(healthMessage{State: "offline"})
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTAddr).
		SetUsername(mqttURL.User.Username()).
		SetPassword(p).
		SetClientID(clientID("verisure2hub")).
		SetKeepAlive(10 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetWill(prefix+"/status", string(lwt), 1, true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("cannot connect to MQTT broker %s: %w", mqttURL.Host, token.Error())
	}
	if cfg.Debug {
		cfg.Logger.Debugf("connected to %s, topic prefix %s", mqttURL.Host, prefix)
	}
	return newQueue(client, prefix, cfg.Logger), nil
}

func newQueue(client mqtt.Client, prefix string, l *zap.SugaredLogger) *Queue {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &Queue{
		client: client,
		prefix: prefix,
		l:      l,
		loaded: map[string]bool{},
	}
}

// SetupComponent marks the entity platform as available. Repeated calls for the same kind do nothing.
func (q *Queue) SetupComponent(ctx context.Context, kind string) error {
	q.Lock()
	defer q.Unlock()
	if q.loaded[kind] {
		return nil
	}
	if err := q.publish(ctx, q.topic(kind, "availability"), 1, true, []byte("online")); err != nil {
		return err
	}
	q.loaded[kind] = true
	q.l.Infof("platform %s available", kind)
	return nil
}

// Fire publishes a hub event.
func (q *Queue) Fire(ctx context.Context, eventType string, ev bridge.DiscoveryEvent) error {
	b, err := json.Marshal(hubEvent{EventType: eventType, Data: ev})
	if err != nil {
		return err
	}
	q.l.Debugf("firing %s for %s", eventType, ev.Service)
	return q.publish(ctx, q.topic("events", eventType), 1, false, b)
}

// PublishStatus publishes a retained state message per device.
func (q *Queue) PublishStatus(ctx context.Context, category verisure.DeviceCategory, devices map[string]verisure.Overview) error {
	for _, id := range slices.Sorted(maps.Keys(devices)) {
		b, err := json.Marshal(devices[id])
		if err != nil {
			return err
		}
		if err := q.publish(ctx, q.topic(category.String(), id, "state"), 0, true, b); err != nil {
			return err
		}
	}
	return nil
}

// PublishHealth publishes the session health as the bridge's retained status.
func (q *Queue) PublishHealth(ctx context.Context, h bridge.Health) error {
	b, err := json.Marshal(newHealthMessage(h))
	if err != nil {
		return err
	}
	return q.publish(ctx, q.topic("status"), 1, true, b)
}

// Close marks the bridge offline and disconnects.
func (q *Queue) Close() {
	b, _ := json.Marshal(healthMessage{State: "offline"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.publish(ctx, q.topic("status"), 1, true, b); err != nil {
		q.l.Warnf("could not publish offline status: %s", err)
	}
	q.client.Disconnect(250)
}

func (q *Queue) topic(parts ...string) string {
	t := q.prefix
	for _, p := range parts {
		t += "/" + p
	}
	return t
}

func (q *Queue) publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	token := q.client.Publish(topic, qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publishing %s: %w", topic, ctx.Err())
	case <-time.After(publishTimeout):
		return fmt.Errorf("publishing %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}
