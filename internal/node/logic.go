package node

import (
	"context"

	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/logger"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Well-known pin names. Nodes that carry the error pair can recover from
// their own failures through the error handling chain; nodes that omit them
// fail terminally.
const (
	PinAutoHandleError       = "auto_handle_error"
	PinAutoHandleErrorString = "auto_handle_error_string"
)

// NodeDescriptor is the static metadata a logic object declares about
// itself: identity, grouping, and the pins an instance starts with.
type NodeDescriptor struct {
	ID          string
	Name        string
	Description string
	Category    string
	Icon        string
	Inputs      []types.Pin
	Outputs     []types.Pin
}

// NodeLogic is the behavior attached to a node. Implementations are
// stateless across invocations; per-run state lives on pins and in the
// execution context.
type NodeLogic interface {
	// Describe returns the static metadata of the node kind.
	Describe() NodeDescriptor

	// Run executes the node body against the given context.
	Run(ctx ExecutionContext) error
}

// Updater is implemented by logic whose pin set depends on configuration.
// The editor invokes it when a node's structural inputs change; the
// implementation may add or remove pins on the node.
type Updater interface {
	OnUpdate(n *RuntimeNode, board BoardAccess)
}

// BoardAccess is the lookup surface a resolved board offers the engine and
// structural node updates.
type BoardAccess interface {
	NodeByID(id string) (*RuntimeNode, bool)
	PinByID(id string) (*RuntimePin, bool)
}

// ExecutionContext is the surface node logic runs against. The concrete
// implementation lives in the engine; pin reads, pin writes and exec pin
// changes observe cancellation.
type ExecutionContext interface {
	// Context carries the cancellation token for this invocation chain.
	Context() context.Context

	// EvaluatePin resolves an input pin's effective value by name.
	EvaluatePin(name string) (types.Value, error)

	// SetPinValue writes an output pin's current value by name.
	SetPinValue(name string, v types.Value) error

	// ActivateExecPin sets a truthy token on an exec output.
	ActivateExecPin(name string) error

	// DeactivateExecPin clears the token on an exec output.
	DeactivateExecPin(name string) error

	// Log appends a structured entry to the invocation's trace.
	Log(msg string, level trace.LogLevel)

	// Logger returns the operator logger. It carries no node fields of its
	// own; callers pass the node id in the fields they log.
	Logger() logger.Logger

	// NodeID returns the executing node's id.
	NodeID() string

	// RunID returns the top-level invocation id.
	RunID() string
}
