// Package server exposes the PWA assets over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/pwa"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

const (
	// OfflineRoute serves the offline fallback page
	OfflineRoute = "/offline"
	// HeadRoute serves the head snippet for host layouts
	HeadRoute = "/pwa/head"
	// MetricsRoute serves Prometheus metrics
	MetricsRoute = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// Server serves the manifest, service worker and companion documents.
// Configuration is resolved fresh for every request.
type Server struct {
	echo      *echo.Echo
	cfg       models.Config
	resolver  *pwa.Resolver
	overrides pwa.Overrides
	metrics   *Metrics
	logger    utils.Logger
	debug     bool
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(logger utils.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOverrides sets per-request override values
func WithOverrides(ov pwa.Overrides) Option {
	return func(s *Server) { s.overrides = ov }
}

// WithDebug hides the install banner unless the config shows it in debug
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// New creates a server for the given application configuration
func New(cfg models.Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, logger: utils.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}

	s.resolver = pwa.NewResolver(cfg.PWA,
		pwa.WithColorProbes(pwa.HostColorProbes(cfg.Host)...),
		pwa.WithLocaleProbes(pwa.HostLocaleProbes(cfg.Host)...),
		pwa.WithLogger(s.logger),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s.echo = e

	if cfg.Server.Metrics {
		s.metrics = NewMetrics()
		e.Use(s.metrics.Middleware())
		e.GET(MetricsRoute, s.metrics.Handler())
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	g := s.echo.Group("", buildMiddleware(s.cfg.RouteMiddleware, s.logger)...)
	g.GET(pwa.ManifestRoute, s.handleManifest)
	g.GET(pwa.ServiceWorkerRoute, s.handleServiceWorker)
	g.GET(pwa.BrowserConfigRoute, s.handleBrowserConfig)
	g.GET(pwa.FaviconRoute, s.handleFavicon)
	g.GET(OfflineRoute, s.handleOffline)
	g.GET(HeadRoute, s.handleHead)
}

// Echo returns the underlying echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Metrics returns the collectors, nil when metrics are disabled
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.logger.Info("Serving PWA assets on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

// resolve builds the configuration for one request, with its
// Accept-Language header as a locale probe.
func (s *Server) resolve(c echo.Context) models.PwaConfig {
	probe := pwa.AcceptLanguageLocale(c.Request().Header.Get("Accept-Language"))
	r := s.resolver.With(
		pwa.WithLocaleProbes(pwa.HostLocaleProbes(s.cfg.Host, probe)...),
		pwa.WithLogger(s.logger.WithField("path", c.Request().URL.Path)),
	)
	return r.Resolve(s.overrides)
}
