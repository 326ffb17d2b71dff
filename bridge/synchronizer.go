package bridge

import (
	"context"
	"errors"
	"fmt"
	"github.com/XANi/verisure2hub/verisure"
	"go.uber.org/zap"
	"sync"
	"time"
)

// Synchronizer copies device overviews from the vendor into the StatusCache.
type Synchronizer struct {
	session     verisure.Session
	cache       *StatusCache
	throttle    *Throttle
	reconnector *Reconnector
	health      *healthTracker
	timeout     time.Duration
	l           *zap.SugaredLogger
	// held for the whole refresh so concurrent pollers do not fetch twice
	mu sync.Mutex
}

// Refresh fetches every category unless the previous fetch was less than the throttle interval ago.
// Vendor failures are logged and, for connectivity problems, followed by a reconnect attempt;
// they are not returned. ErrSessionLocked is returned once credentials were rejected.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.health.state() == PermanentlyLocked {
		return ErrSessionLocked
	}
	if !s.throttle.Allow() {
		return nil
	}
	now := s.throttle.Last()
	for _, category := range verisure.Categories {
		overviews, err := s.fetch(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				s.l.Debugf("refresh of %s abandoned: %s", category, ctx.Err())
				return nil
			}
			s.handleError(ctx, category, err, now)
			return nil
		}
		for _, o := range overviews {
			s.cache.Upsert(category, o)
		}
	}
	s.health.update(func(h *Health) {
		h.State = Authenticated
		h.LastError = ""
		h.LastAttempt = now
		h.LastRefresh = now
	})
	return nil
}

func (s *Synchronizer) fetch(ctx context.Context, category verisure.DeviceCategory) ([]verisure.Overview, error) {
	ctx, cancel := vendorContext(ctx, s.timeout)
	defer cancel()
	overviews, err := s.session.GetOverview(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("fetching %s overview: %w", category, err)
	}
	return overviews, nil
}

func (s *Synchronizer) handleError(ctx context.Context, category verisure.DeviceCategory, err error, now time.Time) {
	switch {
	case errors.Is(err, verisure.ErrConnectivity), errors.Is(err, verisure.ErrCredentialsRejected):
		s.l.Errorf("caught error %s, trying to reconnect", err)
		s.health.update(func(h *Health) {
			h.State = Unauthenticated
			h.LastError = err.Error()
			h.LastAttempt = now
		})
		s.reconnector.Reconnect(ctx)
	default:
		s.l.Errorf("error refreshing %s, skipping this cycle: %s", category, err)
		s.health.update(func(h *Health) {
			h.LastError = err.Error()
			h.LastAttempt = now
		})
	}
}

// vendorContext bounds a single vendor call. A zero timeout leaves ctx as it is.
func vendorContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
