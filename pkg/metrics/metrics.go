// Package metrics provides Prometheus instrumentation for the binding
// engine. The Manager implements forwarder.MetricsRecorder; install it
// with forwarder.SetMetricsRecorder and mount Handler wherever the host
// process serves metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the binding engine.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	bindingsInstalled *prometheus.CounterVec
	bindingsRemoved   *prometheus.CounterVec
	bindingsActive    *prometheus.GaugeVec
	bindRejections    *prometheus.CounterVec
	dispatches        *prometheus.CounterVec
	deferredCalls     *prometheus.CounterVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Path    string
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Path:    "/metrics",
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}
	m.initBindingMetrics()

	return m
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NoOpManager returns a no-op metrics manager for when metrics are
// disabled.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}
