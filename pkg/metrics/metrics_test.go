package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsRecord(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.NodeRun("n1", "success", 5*time.Millisecond)
	m.NodeRun("n1", "error", time.Millisecond)
	m.NodeSkipped("n1")
	m.ErrorRouted("n1")
	m.TriggerStarted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeRuns.WithLabelValues("n1", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeRuns.WithLabelValues("n1", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeRuns.WithLabelValues("n1", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorRouted.WithLabelValues("n1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inflight))

	m.TriggerFinished()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
}

func TestDisabledCollectorIsInert(t *testing.T) {
	m := Disabled()
	// Must not panic with no registered collectors.
	m.NodeRun("n1", "success", time.Millisecond)
	m.NodeSkipped("n1")
	m.ErrorRouted("n1")
	m.TriggerStarted()
	m.TriggerFinished()
}

func TestNilCollectorIsInert(t *testing.T) {
	var m *EngineMetrics
	m.NodeRun("n1", "success", time.Millisecond)
	m.TriggerStarted()
}
