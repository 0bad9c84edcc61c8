// Package metrics exposes Prometheus collectors for engine observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics collects per-run execution counters and latencies:
//
//   - flowlike_node_runs_total (counter): node logic invocations, labeled by
//     node id and status (success/error/skipped).
//   - flowlike_node_run_duration_ms (histogram): logic duration per node.
//   - flowlike_error_routed_total (counter): failures routed through the
//     error handling chain.
//   - flowlike_triggers_inflight (gauge): currently running trigger chains.
type EngineMetrics struct {
	nodeRuns    *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	errorRouted *prometheus.CounterVec
	inflight    prometheus.Gauge

	enabled bool
}

// New registers the engine collectors with the given registry. A nil
// registry falls back to the default registerer.
func New(registry prometheus.Registerer) *EngineMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &EngineMetrics{
		enabled: true,
		nodeRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowlike",
			Name:      "node_runs_total",
			Help:      "Node logic invocations by node id and outcome",
		}, []string{"node_id", "status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowlike",
			Name:      "node_run_duration_ms",
			Help:      "Node logic duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"node_id"}),
		errorRouted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowlike",
			Name:      "error_routed_total",
			Help:      "Failures routed through the error handling chain",
		}, []string{"node_id"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowlike",
			Name:      "triggers_inflight",
			Help:      "Trigger chains currently executing",
		}),
	}
}

// Disabled returns a collector that records nothing. Used when metrics are
// switched off in config.
func Disabled() *EngineMetrics {
	return &EngineMetrics{}
}

// NodeRun records one logic invocation.
func (m *EngineMetrics) NodeRun(nodeID, status string, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.nodeRuns.WithLabelValues(nodeID, status).Inc()
	m.runDuration.WithLabelValues(nodeID).Observe(float64(duration.Milliseconds()))
}

// NodeSkipped records a node run skipped by the recursion guard.
func (m *EngineMetrics) NodeSkipped(nodeID string) {
	if m == nil || !m.enabled {
		return
	}
	m.nodeRuns.WithLabelValues(nodeID, "skipped").Inc()
}

// ErrorRouted records a failure entering the error chain.
func (m *EngineMetrics) ErrorRouted(nodeID string) {
	if m == nil || !m.enabled {
		return
	}
	m.errorRouted.WithLabelValues(nodeID).Inc()
}

// TriggerStarted marks a trigger chain as in flight.
func (m *EngineMetrics) TriggerStarted() {
	if m == nil || !m.enabled {
		return
	}
	m.inflight.Inc()
}

// TriggerFinished marks a trigger chain as done.
func (m *EngineMetrics) TriggerFinished() {
	if m == nil || !m.enabled {
		return
	}
	m.inflight.Dec()
}
