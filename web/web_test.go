package web

import (
	"context"
	"encoding/json"
	"github.com/XANi/verisure2hub/bridge"
	"github.com/XANi/verisure2hub/verisure"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeSource struct {
	refreshes  int
	refreshErr error
	devices    map[verisure.DeviceCategory]map[string]verisure.Overview
	health     bridge.Health
}

func (f *fakeSource) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeSource) Status(category verisure.DeviceCategory) map[string]verisure.Overview {
	return f.devices[category]
}

func (f *fakeSource) Health() bridge.Health {
	return f.health
}

func newTestBackend(t *testing.T, src *fakeSource) *WebBackend {
	gin.SetMode(gin.TestMode)
	w, err := New(Config{Logger: zaptest.NewLogger(t).Sugar(), ListenAddr: "127.0.0.1:0", Source: src})
	require.NoError(t, err)
	return w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus(t *testing.T) {
	src := &fakeSource{devices: map[verisure.DeviceCategory]map[string]verisure.Overview{
		verisure.DeviceSmartPlug: {"p1": {ID: "p1", Category: verisure.DeviceSmartPlug, Status: "on"}},
	}}
	w := newTestBackend(t, src)

	rec := get(t, w.Handler(), "/status/smartplug")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]verisure.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "on", got["p1"].Status)
	assert.Equal(t, 1, src.refreshes)

	rec = get(t, w.Handler(), "/status/alarm")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, w.Handler(), "/status/doorlock").Code)
}

func TestStatusWhenLocked(t *testing.T) {
	src := &fakeSource{
		refreshErr: bridge.ErrSessionLocked,
		devices: map[verisure.DeviceCategory]map[string]verisure.Overview{
			verisure.DeviceAlarm: {"a": {ID: "a"}},
		},
	}
	rec := get(t, newTestBackend(t, src).Handler(), "/status/alarm")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("X-Refresh-Error"), "locked")
	assert.Contains(t, rec.Body.String(), `"a"`)
}

func TestHealth(t *testing.T) {
	src := &fakeSource{health: bridge.Health{State: bridge.Authenticated, LastRefresh: time.Unix(100, 0).UTC()}}
	w := newTestBackend(t, src)
	rec := get(t, w.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"authenticated"`)

	src.health = bridge.Health{State: bridge.PermanentlyLocked, LastError: "credentials rejected"}
	rec = get(t, w.Handler(), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "credentials rejected")
}

func TestNewNeedsSource(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
