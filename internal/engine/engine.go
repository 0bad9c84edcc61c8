// Package engine implements the execution core: lazy pull evaluation of
// pure data dependencies, eager push walking of the execution graph, cycle
// detection, recursion guarding, error routing and per-run traces.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/logger"
	"github.com/GitBrincie212/flow-like/pkg/metrics"
)

// Board is the resolved-graph contract the engine consumes.
type Board interface {
	node.BoardAccess

	// Nodes returns every node on the board.
	Nodes() []*node.RuntimeNode

	// NodesForEvent returns the nodes to execute for a trigger event.
	NodesForEvent(event string) []*node.RuntimeNode

	// ResetRuntime clears values, states and counters board-wide.
	ResetRuntime()
}

// Engine is the trigger surface over one board. It holds no state of its
// own beyond wiring; all runtime state lives on the board's nodes and pins
// and resets at the start of each top-level invocation.
type Engine struct {
	board   Board
	log     logger.Logger
	sink    trace.Sink
	metrics *metrics.EngineMetrics
	hooks   *Hooks
}

// Option configures an engine.
type Option func(*Engine)

// WithLogger sets the operator logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithSink streams completed trace entries to the given sink.
func WithSink(sink trace.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithHooks attaches per-node execution callbacks.
func WithHooks(hooks *Hooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// New creates an engine over the given board.
func New(b Board, opts ...Option) *Engine {
	e := &Engine{
		board: b,
		log:   logger.Nop{},
		sink:  trace.NopSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Trigger fires a single top-level invocation rooted at the given node.
// Runtime state across the board is reset first. The returned trace tree is
// populated even when the run fails.
func (e *Engine) Trigger(ctx context.Context, nodeID string, withSuccessors bool) (*trace.Trace, error) {
	n, ok := e.board.NodeByID(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found", nodeID)
	}

	e.board.ResetRuntime()
	e.metrics.TriggerStarted()
	defer e.metrics.TriggerFinished()

	runID := uuid.NewString()
	e.log.Debug("Triggering node", map[string]interface{}{"nodeId": nodeID, "runId": runID})

	c := newContext(ctx, n, runID, e.log, e.sink, e.metrics, e.hooks)
	err := Trigger(c, nil, withSuccessors)
	c.EndTrace()

	if err != nil {
		e.log.Error("Trigger failed", map[string]interface{}{"nodeId": nodeID, "runId": runID, "error": err.Error()})
	}
	return c.Trace(), err
}

// TriggerWithDependencies fires an invocation whose parent resolution
// reads the given precomputed dependencies map. Hosts batching large runs
// build the map once and avoid per-call resolver work.
func (e *Engine) TriggerWithDependencies(ctx context.Context, nodeID string, withSuccessors bool, deps map[string][]*node.RuntimeNode) (*trace.Trace, error) {
	n, ok := e.board.NodeByID(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found", nodeID)
	}

	e.board.ResetRuntime()
	e.metrics.TriggerStarted()
	defer e.metrics.TriggerFinished()

	runID := uuid.NewString()
	c := newContext(ctx, n, runID, e.log, e.sink, e.metrics, e.hooks)
	err := TriggerWithDependencies(c, nil, withSuccessors, deps)
	c.EndTrace()
	return c.Trace(), err
}

// TriggerEvent fires every node bound to the given trigger event as one
// invocation. The first failure stops the remaining roots.
func (e *Engine) TriggerEvent(ctx context.Context, event string, withSuccessors bool) ([]*trace.Trace, error) {
	roots := e.board.NodesForEvent(event)
	if len(roots) == 0 {
		return nil, fmt.Errorf("no nodes bound to event %s", event)
	}

	e.board.ResetRuntime()
	e.metrics.TriggerStarted()
	defer e.metrics.TriggerFinished()

	runID := uuid.NewString()
	traces := make([]*trace.Trace, 0, len(roots))
	for _, n := range roots {
		c := newContext(ctx, n, runID, e.log, e.sink, e.metrics, e.hooks)
		err := Trigger(c, nil, withSuccessors)
		c.EndTrace()
		traces = append(traces, c.Trace())
		if err != nil {
			return traces, err
		}
	}
	return traces, nil
}

// TriggerBatch fires several roots as one batch sharing a single recursion
// guard, so a node reachable from multiple roots runs once. Traces come
// back per root; the first failure stops the batch.
func (e *Engine) TriggerBatch(ctx context.Context, nodeIDs []string, withSuccessors bool, deps map[string][]*node.RuntimeNode) ([]*trace.Trace, error) {
	e.board.ResetRuntime()
	e.metrics.TriggerStarted()
	defer e.metrics.TriggerFinished()

	runID := uuid.NewString()
	guard := NewGuard()
	traces := make([]*trace.Trace, 0, len(nodeIDs))

	for _, nodeID := range nodeIDs {
		n, ok := e.board.NodeByID(nodeID)
		if !ok {
			return traces, fmt.Errorf("node %s not found", nodeID)
		}
		c := newContext(ctx, n, runID, e.log, e.sink, e.metrics, e.hooks)
		err := TriggerWithDependencies(c, guard, withSuccessors, deps)
		c.EndTrace()
		traces = append(traces, c.Trace())
		if err != nil {
			return traces, err
		}
	}
	return traces, nil
}

// BuildDependenciesMap precomputes the pure-parent map for every node on a
// board, keyed by node id. Feed the result to TriggerWithDependencies.
func BuildDependenciesMap(b Board) map[string][]*node.RuntimeNode {
	nodes := b.Nodes()
	deps := make(map[string][]*node.RuntimeNode, len(nodes))
	for _, n := range nodes {
		deps[n.ID()] = n.PureParents()
	}
	return deps
}
