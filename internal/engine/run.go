package engine

import (
	"fmt"
	"time"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
)

// runNodeLogicOnly runs the context's node without touching its exec
// successors: guard check, state transitions, the logic call and the
// bracketing trace entry. Failures come back as classified by
// classifyRunError, without any error routing; callers decide whether to
// route.
func runNodeLogicOnly(c *Context, guard *Guard) error {
	if err := c.cancelled(); err != nil {
		return err
	}

	c.setState(node.StateRunning)
	n := c.Node()

	if guard.Has(n.ID()) {
		c.Log(fmt.Sprintf("Recursion detected for: %s", n.ID()), trace.LevelDebug)
		c.EndTrace()
		c.metrics.NodeSkipped(n.ID())
		return nil
	}
	guard.Add(n.ID())

	entry := trace.NewLogMessage(fmt.Sprintf("Starting node execution: %s [%s]", n.Name(), n.ID()), trace.LevelDebug)
	if c.hooks != nil && c.hooks.OnNodeStart != nil {
		c.hooks.OnNodeStart(n.ID(), n.Name())
	}

	start := time.Now()
	err := n.Logic().Run(c)
	n.MarkExecuted()

	if err == nil {
		// The logic may have swallowed the cancellation; the chain still
		// has to stop.
		err = c.cancelled()
	}

	if err != nil {
		c.Log(fmt.Sprintf("Failed to execute node: %s", err), trace.LevelError)
		entry.Finish()
		c.appendEntry(entry)
		c.EndTrace()
		c.setState(node.StateError)
		c.metrics.NodeRun(n.ID(), "error", time.Since(start))
		if c.hooks != nil && c.hooks.OnNodeError != nil {
			c.hooks.OnNodeError(n.ID(), err)
		}
		return classifyRunError(n.ID(), err)
	}

	c.setState(node.StateSuccess)
	entry.Finish()
	c.appendEntry(entry)
	c.EndTrace()
	c.metrics.NodeRun(n.ID(), "success", time.Since(start))
	if c.hooks != nil && c.hooks.OnNodeComplete != nil {
		c.hooks.OnNodeComplete(n.ID(), n.Name())
	}
	return nil
}

// classifyRunError keeps already-classified engine failures intact and
// wraps everything else as ExecutionFailed on the given node.
func classifyRunError(nodeID string, err error) error {
	switch flowerr.KindOf(err) {
	case flowerr.KindCancelled, flowerr.KindValidationFailed, flowerr.KindPinNotReady, flowerr.KindCycleDetected:
		return err
	default:
		return flowerr.ExecutionFailed(nodeID, err)
	}
}

// routable reports whether a failure should be driven through the error
// handling chain. Only dependency and execution failures route; cycles,
// unready pins, validation rejections and cancellation surface directly.
func routable(err error) bool {
	switch flowerr.KindOf(err) {
	case flowerr.KindExecutionFailed, flowerr.KindDependencyFailed:
		return true
	default:
		return false
	}
}
