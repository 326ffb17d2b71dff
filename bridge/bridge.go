// Package bridge keeps a cached copy of the vendor's device status and announces
// the resulting entities to the home-automation hub.
package bridge

import (
	"context"
	"fmt"
	"github.com/XANi/verisure2hub/verisure"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"time"
)

// SessionFactory builds a vendor session from the configured credentials.
type SessionFactory func(username, password string) (verisure.Session, error)

type Config struct {
	Username string
	Password string

	NewSession SessionFactory
	Hub        Hub

	// MinTimeBetweenRequests defaults to MinTimeBetweenRequests.
	MinTimeBetweenRequests time.Duration
	// VendorTimeout bounds every vendor call, logins included. Zero means no extra bound.
	VendorTimeout time.Duration

	Clock  clock.Clock
	Logger *zap.SugaredLogger
}

// Bridge owns the vendor session, the status cache and the session health.
type Bridge struct {
	cache        *StatusCache
	synchronizer *Synchronizer
	reconnector  *Reconnector
	discovery    *DiscoveryPublisher
	health       *healthTracker
	l            *zap.SugaredLogger
}

// Setup validates the config, logs in, runs the first refresh and announces the
// entity platforms to the hub. Any failure aborts setup.
func Setup(ctx context.Context, cfg Config) (*Bridge, error) {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	var missing []string
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		err := &ConfigError{Missing: missing}
		l.Error(err)
		return nil, err
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	interval := cfg.MinTimeBetweenRequests
	if interval == 0 {
		interval = MinTimeBetweenRequests
	}

	session, err := cfg.NewSession(cfg.Username, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("creating vendor session: %w", err)
	}
	health := &healthTracker{}
	loginCtx, cancel := vendorContext(ctx, cfg.VendorTimeout)
	err = session.Login(loginCtx)
	cancel()
	if err != nil {
		l.Errorf("could not log in to vendor: %s", err)
		return nil, &AuthError{Err: err}
	}
	health.update(func(h *Health) {
		h.State = Authenticated
		h.LastAttempt = c.Now()
	})

	cache := NewStatusCache()
	for _, category := range verisure.Categories {
		cache.Init(category)
	}
	reconnector := newReconnector(session, health, c, cfg.VendorTimeout, l.Named("reconnect"))
	b := &Bridge{
		cache:       cache,
		reconnector: reconnector,
		health:      health,
		discovery:   NewDiscoveryPublisher(cfg.Hub),
		l:           l,
		synchronizer: &Synchronizer{
			session:     session,
			cache:       cache,
			throttle:    NewThrottle(c, interval),
			reconnector: reconnector,
			health:      health,
			timeout:     cfg.VendorTimeout,
			l:           l.Named("sync"),
		},
	}
	if err := b.synchronizer.Refresh(ctx); err != nil {
		return nil, err
	}
	if err := b.discovery.PublishAll(ctx); err != nil {
		l.Errorf("could not announce platforms to hub: %s", err)
		return nil, err
	}
	l.Infof("bridge ready, %d devices known", cache.Len())
	return b, nil
}

// Refresh updates the status cache from the vendor, throttled to one fetch per interval.
func (b *Bridge) Refresh(ctx context.Context) error {
	return b.synchronizer.Refresh(ctx)
}

// Status returns the latest known overview of every device in the category, keyed by device ID.
func (b *Bridge) Status(category verisure.DeviceCategory) map[string]verisure.Overview {
	return b.cache.Get(category)
}

func (b *Bridge) AlarmStatus() map[string]verisure.Overview {
	return b.Status(verisure.DeviceAlarm)
}

func (b *Bridge) ClimateStatus() map[string]verisure.Overview {
	return b.Status(verisure.DeviceClimate)
}

func (b *Bridge) SmartPlugStatus() map[string]verisure.Overview {
	return b.Status(verisure.DeviceSmartPlug)
}

func (b *Bridge) Health() Health {
	return b.health.get()
}

// OnHealthChange registers an observer for session health changes.
func (b *Bridge) OnHealthChange(fn HealthObserver) {
	b.health.subscribe(fn)
}
