package bridge

import (
	"context"
	"errors"
	"github.com/XANi/verisure2hub/verisure"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"time"
)

// Reconnector logs the session back in after the vendor became unreachable.
// A credential rejection locks the session for good; the vendor account gets locked
// after repeated bad logins so there is no point retrying.
type Reconnector struct {
	session verisure.Session
	health  *healthTracker
	clock   clock.Clock
	timeout time.Duration
	l       *zap.SugaredLogger
}

func newReconnector(session verisure.Session, health *healthTracker, c clock.Clock, timeout time.Duration, l *zap.SugaredLogger) *Reconnector {
	return &Reconnector{session: session, health: health, clock: c, timeout: timeout, l: l}
}

// Reconnect never returns an error; outcome is visible through the session health.
func (r *Reconnector) Reconnect(ctx context.Context) {
	if r.health.state() == PermanentlyLocked {
		r.l.Debug("session locked, not logging in again")
		return
	}
	ctx, cancel := vendorContext(ctx, r.timeout)
	defer cancel()
	err := r.session.Login(ctx)
	now := r.clock.Now()
	switch {
	case err == nil:
		r.l.Info("logged back in to vendor")
		r.health.update(func(h *Health) {
			h.State = Authenticated
			h.LastError = ""
			h.LastAttempt = now
		})
	case errors.Is(err, verisure.ErrCredentialsRejected):
		r.l.Errorf("could not log in to vendor, credentials rejected, giving up: %s", err)
		r.health.update(func(h *Health) {
			h.State = PermanentlyLocked
			h.LastError = err.Error()
			h.LastAttempt = now
		})
	default:
		r.l.Errorf("could not log in to vendor: %s", err)
		r.health.update(func(h *Health) {
			h.State = Unauthenticated
			h.LastError = err.Error()
			h.LastAttempt = now
		})
	}
}
