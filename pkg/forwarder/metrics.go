package forwarder

import "sync"

// MetricsRecorder defines metrics hooks for binding and dispatch
// operations. The kind label is "signal" or "event".
type MetricsRecorder interface {
	RecordBindingInstalled(kind string)
	RecordBindingRemoved(kind string, reason string)
	RecordBindRejected(kind string, reason string)
	RecordDispatch(kind string, status string)
	RecordDeferredCall(status string)
}

type nopMetrics struct{}

func (n *nopMetrics) RecordBindingInstalled(kind string) {}
func (n *nopMetrics) RecordBindingRemoved(kind string, reason string) {}
func (n *nopMetrics) RecordBindRejected(kind string, reason string) {}
func (n *nopMetrics) RecordDispatch(kind string, status string) {}
func (n *nopMetrics) RecordDeferredCall(status string) {}

var (
	metricsMu sync.RWMutex
	metrics   MetricsRecorder = &nopMetrics{}
)

// SetMetricsRecorder sets the package-level binding metrics recorder.
// Passing nil restores the no-op recorder.
func SetMetricsRecorder(recorder MetricsRecorder) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if recorder == nil {
		metrics = &nopMetrics{}
		return
	}
	metrics = recorder
}

func metricsRecorder() MetricsRecorder {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return metrics
}
