package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the PWA endpoint collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	renderFailures  *prometheus.CounterVec
	customAssets    *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminpwa",
			Name:      "http_requests_total",
			Help:      "PWA endpoint requests by route and status.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adminpwa",
			Name:      "http_request_duration_seconds",
			Help:      "PWA endpoint latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		renderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminpwa",
			Name:      "render_failures_total",
			Help:      "Renders that fell back to built-in defaults.",
		}, []string{"asset"}),
		customAssets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adminpwa",
			Name:      "custom_assets_served_total",
			Help:      "Responses served from a file in the public directory.",
		}, []string{"asset"}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.renderFailures,
		m.customAssets,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry for tests and embedding hosts
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency per registered route
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Response().Status)).Inc()
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) renderFailed(asset string) {
	if m != nil {
		m.renderFailures.WithLabelValues(asset).Inc()
	}
}

func (m *Metrics) customServed(asset string) {
	if m != nil {
		m.customAssets.WithLabelValues(asset).Inc()
	}
}
