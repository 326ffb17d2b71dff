package main

import (
	"context"
	"github.com/XANi/goneric"
	"github.com/XANi/verisure2hub/bridge"
	"github.com/XANi/verisure2hub/config"
	"github.com/XANi/verisure2hub/queue"
	"github.com/XANi/verisure2hub/verisure"
	"github.com/XANi/verisure2hub/web"
	"net/http"
	_ "net/http/pprof"
	"sync"
	"time"
)

func run(ctx context.Context, cfg config.Config) error {
	if len(cfg.PProfAddress) > 0 {
		log.Infof("listening pprof on %s", cfg.PProfAddress)
		go func() {
			log.Errorf("failed to start debug listener: %s (ignoring)", http.ListenAndServe(cfg.PProfAddress, nil))
		}()
	}
	q, err := queue.New(&queue.Config{
		MQTTAddr: cfg.MQTTAddress,
		Prefix:   cfg.MQTTPrefix,
		Logger:   log.Named("mq"),
		Debug:    debug,
	})
	if err != nil {
		log.Panicf("error starting queue: %s", err)
	}
	defer q.Close()

	b, err := bridge.Setup(ctx, bridge.Config{
		Username: cfg.Verisure.Username,
		Password: cfg.Verisure.Password,
		NewSession: func(username, password string) (verisure.Session, error) {
			client, err := verisure.New(verisure.Config{
				URL:      cfg.Verisure.URL,
				Username: username,
				Password: password,
				Timeout:  cfg.Verisure.Timeout,
				Logger:   log.Named("verisure"),
			})
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		Hub:           q,
		VendorTimeout: cfg.Verisure.Timeout,
		Logger:        log.Named("bridge"),
	})
	if err != nil {
		return err
	}
	publishHealth := func(h bridge.Health) {
		hctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := q.PublishHealth(hctx, h); err != nil {
			log.Warnf("could not publish health: %s", err)
		}
	}
	health := newHealthForwarder(publishHealth)
	b.OnHealthChange(health.observe)
	// runs before q.Close so the offline status is the last one published
	defer health.Close()
	publishHealth(b.Health())

	if len(cfg.ListenAddress) > 0 {
		w := goneric.Must(web.New(web.Config{
			Logger:     log.Named("web"),
			ListenAddr: cfg.ListenAddress,
			Source:     b,
		}))
		go func() {
			if err := w.Run(); err != nil {
				log.Errorf("web listener stopped: %s", err)
			}
		}()
		defer w.Shutdown(context.Background())
	}

	bridge.NewPoller(bridge.PollerConfig{
		Bridge:    b,
		Publisher: q,
		Interval:  cfg.PollInterval,
		Logger:    log.Named("poll"),
	}).Run(ctx)
	log.Info("shutting down")
	return nil
}

// healthForwarder moves health updates off the refresh path, where observers are called.
type healthForwarder struct {
	mu     sync.Mutex
	closed bool
	ch     chan bridge.Health
	done   chan struct{}
}

func newHealthForwarder(publish func(bridge.Health)) *healthForwarder {
	f := &healthForwarder{
		ch:   make(chan bridge.Health, 8),
		done: make(chan struct{}),
	}
	go func() {
		defer close(f.done)
		for h := range f.ch {
			publish(h)
		}
	}()
	return f
}

func (f *healthForwarder) observe(h bridge.Health) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- h:
	default:
		log.Warnf("health update dropped, state %s", h.State)
	}
}

// Close stops forwarding and waits until queued updates are published.
func (f *healthForwarder) Close() {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	f.mu.Unlock()
	<-f.done
}
