package engine

import (
	"fmt"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// handleError drives the error handling chain of the failing context's
// node: it activates the well-known error pins, then runs each attached
// handler — dependencies, logic and the handler's own exec successors —
// under the same scheduler rules as a normal walk.
//
// Asymmetry with the successor walk is deliberate: the chain shares the
// recursion guard of the original failing call, so a handler re-triggering
// its source degrades into a skip instead of a loop.
//
// A nil return means the chain completed; the caller still surfaces the
// original failure, and the failing node's final state is Error. Any
// failure inside the chain aborts it and comes back as ExecutionFailed
// carrying the original node's id.
func handleError(c *Context, errText string, guard *Guard) error {
	c.metrics.ErrorRouted(c.NodeID())

	// Best effort: nodes without the error pins simply have nothing to
	// activate.
	_ = c.ActivateExecPin(node.PinAutoHandleError)
	_ = c.SetPinValue(node.PinAutoHandleErrorString, types.String(errText))

	terminal := &flowerr.Error{Kind: flowerr.KindExecutionFailed, NodeID: c.NodeID(), Message: errText}

	handlers, err := c.Node().ErrorHandledTargets()
	if err != nil || len(handlers) == 0 {
		c.Log(fmt.Sprintf("No error handling nodes found for: %s", c.NodeID()), trace.LevelError)
		return terminal
	}

	for _, handler := range handlers {
		sub := c.CreateSubContext(handler)

		if derr := runDependencies(sub, guard); derr != nil {
			_ = sub.SetPinValue(node.PinAutoHandleErrorString, types.String("failed to run dependencies for error handler"))
			sub.EndTrace()
			c.PushSubContext(sub)
			return terminal
		}

		if rerr := runNodeLogicOnly(sub, guard); rerr != nil {
			_ = sub.SetPinValue(node.PinAutoHandleErrorString, types.String(rerr.Error()))
			sub.EndTrace()
			c.PushSubContext(sub)
			return terminal
		}

		// Walk the handler's exec successors, still on the shared guard.
		stack := handler.ConnectedExecTargets(true)
		seen := make(map[*node.RuntimeNode]struct{}, len(stack)*2)

		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if _, ok := seen[next.Node]; ok {
				continue
			}
			seen[next.Node] = struct{}{}

			sub2 := c.CreateSubContext(next.Node)
			sub2.startedBy = next.ThroughPins

			if derr := runDependencies(sub2, guard); derr != nil {
				_ = sub2.SetPinValue(node.PinAutoHandleErrorString, types.String("failed to run successor dependencies in error chain"))
				sub2.EndTrace()
				c.PushSubContext(sub2)
				_ = sub.SetPinValue(node.PinAutoHandleErrorString, types.String("error chain aborted"))
				sub.EndTrace()
				c.PushSubContext(sub)
				return terminal
			}

			if rerr := runNodeLogicOnly(sub2, guard); rerr != nil {
				_ = sub2.SetPinValue(node.PinAutoHandleErrorString, types.String(rerr.Error()))
				sub2.EndTrace()
				c.PushSubContext(sub2)
				_ = sub.SetPinValue(node.PinAutoHandleErrorString, types.String("error chain aborted"))
				sub.EndTrace()
				c.PushSubContext(sub)
				return terminal
			}

			stack = append(stack, next.Node.ConnectedExecTargets(true)...)

			sub2.EndTrace()
			c.PushSubContext(sub2)
		}

		sub.EndTrace()
		c.PushSubContext(sub)
	}

	// Handlers completed; the failing node still finishes in Error, never
	// Success.
	c.setState(node.StateError)
	return nil
}
