package web

import (
	"context"
	"errors"
	"github.com/XANi/verisure2hub/bridge"
	"github.com/XANi/verisure2hub/verisure"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
	"time"
)

// StatusSource is what the web server reads device state from.
type StatusSource interface {
	Refresh(ctx context.Context) error
	Status(category verisure.DeviceCategory) map[string]verisure.Overview
	Health() bridge.Health
}

type Config struct {
	Logger     *zap.SugaredLogger
	ListenAddr string
	Source     StatusSource
}

type WebBackend struct {
	l      *zap.SugaredLogger
	r      *gin.Engine
	source StatusSource
	srv    *http.Server
}

func New(cfg Config) (*WebBackend, error) {
	if cfg.Source == nil {
		return nil, errors.New("web: no status source")
	}
	w := &WebBackend{
		l:      cfg.Logger,
		source: cfg.Source,
	}
	if w.l == nil {
		w.l = zap.NewNop().Sugar()
	}
	r := gin.New()
	r.Use(ginzap.Ginzap(w.l.Desugar(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(w.l.Desugar(), true))
	r.GET("/status/:category", w.status)
	r.GET("/health", w.health)
	w.r = r
	w.srv = &http.Server{Addr: cfg.ListenAddr, Handler: r}
	return w, nil
}

func (b *WebBackend) Handler() http.Handler {
	return b.r
}

func (b *WebBackend) Run() error {
	b.l.Infof("listening on %s", b.srv.Addr)
	err := b.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (b *WebBackend) Shutdown(ctx context.Context) error {
	return b.srv.Shutdown(ctx)
}

func (b *WebBackend) status(c *gin.Context) {
	category, err := verisure.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	// serve last known state even when refresh is refused
	if err := b.source.Refresh(c.Request.Context()); err != nil {
		c.Header("X-Refresh-Error", err.Error())
	}
	devices := b.source.Status(category)
	if devices == nil {
		devices = map[string]verisure.Overview{}
	}
	c.JSON(http.StatusOK, devices)
}

func (b *WebBackend) health(c *gin.Context) {
	h := b.source.Health()
	code := http.StatusOK
	if h.State == bridge.PermanentlyLocked {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, h)
}
