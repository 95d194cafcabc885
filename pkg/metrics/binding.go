package metrics

import "github.com/prometheus/client_golang/prometheus"

func (m *Manager) initBindingMetrics() {
	m.bindingsInstalled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_installed_total",
			Help: "Total number of bindings installed",
		},
		[]string{"kind"},
	)

	m.bindingsRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_removed_total",
			Help: "Total number of bindings removed, by removal reason",
		},
		[]string{"kind", "reason"},
	)

	m.bindingsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "binding_active",
			Help: "Number of currently installed bindings",
		},
		[]string{"kind"},
	)

	m.bindRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_rejected_total",
			Help: "Total number of rejected bind attempts, by reason",
		},
		[]string{"kind", "reason"},
	)

	m.dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_dispatch_total",
			Help: "Total number of dispatch deliveries, by outcome",
		},
		[]string{"kind", "status"},
	)

	m.deferredCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deferred_call_total",
			Help: "Total number of deferred call transitions",
		},
		[]string{"status"},
	)

	m.registry.MustRegister(
		m.bindingsInstalled,
		m.bindingsRemoved,
		m.bindingsActive,
		m.bindRejections,
		m.dispatches,
		m.deferredCalls,
	)
}

// RecordBindingInstalled records a successful bind.
func (m *Manager) RecordBindingInstalled(kind string) {
	if !m.enabled {
		return
	}
	m.bindingsInstalled.WithLabelValues(kind).Inc()
	m.bindingsActive.WithLabelValues(kind).Inc()
}

// RecordBindingRemoved records a binding removal.
func (m *Manager) RecordBindingRemoved(kind string, reason string) {
	if !m.enabled {
		return
	}
	m.bindingsRemoved.WithLabelValues(kind, reason).Inc()
	m.bindingsActive.WithLabelValues(kind).Dec()
}

// RecordBindRejected records a rejected bind attempt.
func (m *Manager) RecordBindRejected(kind string, reason string) {
	if !m.enabled {
		return
	}
	m.bindRejections.WithLabelValues(kind, reason).Inc()
}

// RecordDispatch records one dispatch delivery outcome.
func (m *Manager) RecordDispatch(kind string, status string) {
	if !m.enabled {
		return
	}
	m.dispatches.WithLabelValues(kind, status).Inc()
}

// RecordDeferredCall records a deferred call state transition.
func (m *Manager) RecordDeferredCall(status string) {
	if !m.enabled {
		return
	}
	m.deferredCalls.WithLabelValues(status).Inc()
}
