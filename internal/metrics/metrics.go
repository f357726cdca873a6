// Package metrics exposes Prometheus instrumentation for the feed and the
// renderer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors on a private registry so tests can create
// as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	MessagesReceived prometheus.Counter
	DecodeErrors     prometheus.Counter
	Renders          prometheus.Counter
	RenderErrors     prometheus.Counter
	Bars             prometheus.Gauge
	Connected        prometheus.Gauge
	ViewerClients    prometheus.Gauge
	RenderSeconds    prometheus.Histogram
}

// New builds and registers every collector.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.MessagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cpubars_feed_messages_total",
		Help: "Total messages received from the feed",
	})
	m.DecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cpubars_feed_decode_errors_total",
		Help: "Total feed messages dropped because the payload was malformed",
	})
	m.Renders = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cpubars_renders_total",
		Help: "Total render passes",
	})
	m.RenderErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cpubars_render_errors_total",
		Help: "Total render passes whose display commit failed",
	})
	m.Bars = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpubars_bars",
		Help: "Number of bars in the current view",
	})
	m.Connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpubars_feed_connected",
		Help: "1 while the feed connection is open",
	})
	m.ViewerClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpubars_viewer_clients",
		Help: "Browsers attached to the viewer websocket",
	})
	m.RenderSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cpubars_render_seconds",
		Help:    "Latency of decode plus render per message",
		Buckets: prometheus.DefBuckets,
	})

	m.registry.MustRegister(
		m.MessagesReceived,
		m.DecodeErrors,
		m.Renders,
		m.RenderErrors,
		m.Bars,
		m.Connected,
		m.ViewerClients,
		m.RenderSeconds,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
