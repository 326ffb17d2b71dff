package bridge

import (
	"context"
	"errors"
	"github.com/XANi/verisure2hub/verisure"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"time"
)

// StatePublisher pushes the cached device state out to the hub's entities.
type StatePublisher interface {
	PublishStatus(ctx context.Context, category verisure.DeviceCategory, devices map[string]verisure.Overview) error
}

type PollerConfig struct {
	Bridge    *Bridge
	Publisher StatePublisher
	// Interval defaults to 30 seconds.
	Interval time.Duration
	Clock    clock.Clock
	Logger   *zap.SugaredLogger
}

// Poller is the periodic update that drives the bridge when nothing else asks for fresh state.
type Poller struct {
	bridge    *Bridge
	publisher StatePublisher
	interval  time.Duration
	clock     clock.Clock
	l         *zap.SugaredLogger
}

func NewPoller(cfg PollerConfig) *Poller {
	p := &Poller{
		bridge:    cfg.Bridge,
		publisher: cfg.Publisher,
		interval:  cfg.Interval,
		clock:     cfg.Clock,
		l:         cfg.Logger,
	}
	if p.interval == 0 {
		p.interval = 30 * time.Second
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	if p.l == nil {
		p.l = zap.NewNop().Sugar()
	}
	return p
}

// Run polls until ctx is cancelled. The first poll happens right away.
func (p *Poller) Run(ctx context.Context) {
	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()
	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs a single refresh and publishes every category's state.
func (p *Poller) Poll(ctx context.Context) {
	err := p.bridge.Refresh(ctx)
	if errors.Is(err, ErrSessionLocked) {
		p.l.Debug("session locked, publishing last known state")
	} else if err != nil {
		p.l.Warnf("refresh failed: %s", err)
	}
	if p.publisher == nil {
		return
	}
	for _, category := range verisure.Categories {
		if err := p.publisher.PublishStatus(ctx, category, p.bridge.Status(category)); err != nil {
			p.l.Warnf("could not publish %s state: %s", category, err)
		}
	}
}
