package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/logger"
	"github.com/GitBrincie212/flow-like/pkg/metrics"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Hooks are optional callbacks fired around node execution. Metrics and
// the streaming sink are fed directly by the context, not through hooks.
type Hooks struct {
	OnNodeStart    func(nodeID, nodeName string)
	OnNodeComplete func(nodeID, nodeName string)
	OnNodeError    func(nodeID string, err error)
	OnPinValue     func(nodeID, pinName string, v types.Value)
}

// Context is the per-invocation scratchpad: it binds one node to the run's
// cancellation token, trace buffer and sub-context tree, and implements the
// node.ExecutionContext surface logic runs against.
type Context struct {
	goCtx     context.Context
	node      *node.RuntimeNode
	runID     string
	id        string
	startedBy []*node.RuntimePin

	log     logger.Logger
	sink    trace.Sink
	metrics *metrics.EngineMetrics
	hooks   *Hooks

	trace *trace.Trace
}

func newContext(
	goCtx context.Context,
	n *node.RuntimeNode,
	runID string,
	log logger.Logger,
	sink trace.Sink,
	m *metrics.EngineMetrics,
	hooks *Hooks,
) *Context {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = trace.NopSink{}
	}
	now := time.Now()
	return &Context{
		goCtx:   goCtx,
		node:    n,
		runID:   runID,
		id:      uuid.NewString(),
		log:     log,
		sink:    sink,
		metrics: m,
		hooks:   hooks,
		trace: &trace.Trace{
			NodeID:   n.ID(),
			NodeName: n.Name(),
			Start:    now,
			End:      now,
		},
	}
}

// Context returns the cancellation token for this invocation chain.
func (c *Context) Context() context.Context { return c.goCtx }

// Node returns the node bound to this context.
func (c *Context) Node() *node.RuntimeNode { return c.node }

// NodeID returns the bound node's id.
func (c *Context) NodeID() string { return c.node.ID() }

// RunID returns the top-level invocation id.
func (c *Context) RunID() string { return c.runID }

// StartedBy returns the pins through which this invocation was reached.
func (c *Context) StartedBy() []*node.RuntimePin { return c.startedBy }

// Trace returns the trace record of this invocation.
func (c *Context) Trace() *trace.Trace { return c.trace }

// Logger returns the operator logger.
func (c *Context) Logger() logger.Logger { return c.log }

// cancelled returns the cancellation error, if the token fired. Every
// suspension point consults this.
func (c *Context) cancelled() error {
	if err := c.goCtx.Err(); err != nil {
		return flowerr.Cancelled(c.node.ID(), err)
	}
	return nil
}

// EvaluatePin resolves an input pin's effective value by name: the current
// value of its producer, walked through relay pins, or the declared
// default.
func (c *Context) EvaluatePin(name string) (types.Value, error) {
	if err := c.cancelled(); err != nil {
		return types.Null(), err
	}
	pin, err := c.node.PinByName(name)
	if err != nil {
		return types.Null(), flowerr.PinNotReady(c.node.ID(), name)
	}
	return pin.Evaluate()
}

// SetPinValue writes an output pin's current value by name.
func (c *Context) SetPinValue(name string, v types.Value) error {
	if err := c.cancelled(); err != nil {
		return err
	}
	pin, err := c.node.PinByName(name)
	if err != nil {
		return fmt.Errorf("node %s: %w", c.node.ID(), err)
	}
	if err := pin.SetValue(v); err != nil {
		return err
	}
	if c.hooks != nil && c.hooks.OnPinValue != nil {
		c.hooks.OnPinValue(c.node.ID(), name, v)
	}
	return nil
}

// ActivateExecPin sets a truthy token on an exec output.
func (c *Context) ActivateExecPin(name string) error {
	return c.setExecPin(name, true)
}

// DeactivateExecPin clears the token on an exec output.
func (c *Context) DeactivateExecPin(name string) error {
	return c.setExecPin(name, false)
}

func (c *Context) setExecPin(name string, active bool) error {
	if err := c.cancelled(); err != nil {
		return err
	}
	pin, err := c.node.PinByName(name)
	if err != nil {
		return fmt.Errorf("node %s: %w", c.node.ID(), err)
	}
	def := pin.Def()
	if !def.IsExecution() || !def.IsOutput() {
		return fmt.Errorf("pin %s is not an execution output", name)
	}
	return pin.SetValue(types.Bool(active))
}

// Log appends an instantaneous structured entry to the invocation trace.
func (c *Context) Log(msg string, level trace.LogLevel) {
	entry := trace.NewLogMessage(msg, level)
	c.appendEntry(entry)
}

// LogWith appends an instantaneous entry carrying a structured payload.
func (c *Context) LogWith(msg string, level trace.LogLevel, payload map[string]interface{}) {
	entry := trace.NewLogMessage(msg, level)
	entry.Payload = payload
	c.appendEntry(entry)
}

// appendEntry stamps node identity on a finished entry, buffers it and
// forwards it to the streaming sink.
func (c *Context) appendEntry(entry *trace.LogMessage) {
	entry.NodeID = c.node.ID()
	entry.NodeName = c.node.Name()
	c.trace.Entries = append(c.trace.Entries, entry)
	c.sink.Push(c.runID, entry)
}

// CreateSubContext opens a child context for the given node, sharing the
// run's cancellation token and sinks. The child attaches to this context at
// end-of-call via PushSubContext.
func (c *Context) CreateSubContext(n *node.RuntimeNode) *Context {
	sub := newContext(c.goCtx, n, c.runID, c.log, c.sink, c.metrics, c.hooks)
	return sub
}

// PushSubContext attaches a finished child to the trace tree.
func (c *Context) PushSubContext(sub *Context) {
	c.trace.Children = append(c.trace.Children, sub.trace)
}

// EndTrace stamps the end of this invocation's trace record.
func (c *Context) EndTrace() {
	c.trace.End = time.Now()
}

func (c *Context) setState(s node.State) {
	c.node.SetState(s)
}
