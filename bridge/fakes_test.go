package bridge

import (
	"context"
	"github.com/XANi/verisure2hub/verisure"
	"sync"
)

type fakeSession struct {
	mu          sync.Mutex
	loginErrs   []error
	loginCalls  int
	overviews   map[verisure.DeviceCategory][]verisure.Overview
	overviewErr map[verisure.DeviceCategory]error
	fetches     []verisure.DeviceCategory
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		overviews:   map[verisure.DeviceCategory][]verisure.Overview{},
		overviewErr: map[verisure.DeviceCategory]error{},
	}
}

func (f *fakeSession) Login(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if len(f.loginErrs) == 0 {
		return nil
	}
	err := f.loginErrs[0]
	f.loginErrs = f.loginErrs[1:]
	return err
}

func (f *fakeSession) GetOverview(ctx context.Context, category verisure.DeviceCategory) ([]verisure.Overview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, category)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.overviewErr[category]; err != nil {
		return nil, err
	}
	return f.overviews[category], nil
}

func (f *fakeSession) set(category verisure.DeviceCategory, o ...verisure.Overview) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overviews[category] = o
}

func (f *fakeSession) fail(category verisure.DeviceCategory, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overviewErr[category] = err
}

func (f *fakeSession) failLogin(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginErrs = append(f.loginErrs, errs...)
}

func (f *fakeSession) logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func (f *fakeSession) fetched() []verisure.DeviceCategory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]verisure.DeviceCategory(nil), f.fetches...)
}

func (f *fakeSession) factory(calls *int) SessionFactory {
	return func(username, password string) (verisure.Session, error) {
		if calls != nil {
			*calls++
		}
		return f, nil
	}
}

type hubCall struct {
	method string
	arg    string
	event  DiscoveryEvent
}

type fakeHub struct {
	mu       sync.Mutex
	calls    []hubCall
	setupErr error
}

func (h *fakeHub) SetupComponent(ctx context.Context, kind string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hubCall{method: "setup", arg: kind})
	return h.setupErr
}

func (h *fakeHub) Fire(ctx context.Context, eventType string, event DiscoveryEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hubCall{method: "fire", arg: eventType, event: event})
	return nil
}

func (h *fakeHub) recorded() []hubCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]hubCall(nil), h.calls...)
}

func (h *fakeHub) fired() (events []DiscoveryEvent) {
	for _, c := range h.recorded() {
		if c.method == "fire" {
			events = append(events, c.event)
		}
	}
	return events
}

type fakeStatePublisher struct {
	mu        sync.Mutex
	published map[verisure.DeviceCategory]map[string]verisure.Overview
	count     int
}

func (p *fakeStatePublisher) PublishStatus(ctx context.Context, category verisure.DeviceCategory, devices map[string]verisure.Overview) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.published == nil {
		p.published = map[verisure.DeviceCategory]map[string]verisure.Overview{}
	}
	p.published[category] = devices
	p.count++
	return nil
}

func (p *fakeStatePublisher) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
