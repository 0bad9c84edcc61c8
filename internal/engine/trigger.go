package engine

import (
	"fmt"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
)

// Trigger is the main entry point of the scheduler: it runs the context's
// pure dependencies post-order, runs the node itself, and — when
// withSuccessors is set — walks the exec graph depth-first from the node's
// truthy exec outputs.
//
// A nil guard starts a fresh invocation chain. Each successor branch of
// the exec walk gets its own fresh guard; the error router shares the
// guard of the failing call.
func Trigger(c *Context, guard *Guard, withSuccessors bool) error {
	if guard == nil {
		guard = NewGuard()
	}

	// Dependencies first: every pure parent completes before this node's
	// logic begins.
	if err := runDependencies(c, guard); err != nil {
		c.Log("Failed to run dependencies", trace.LevelError)
		c.EndTrace()
		if !routable(err) {
			return err
		}
		if herr := handleError(c, err.Error(), guard); herr != nil {
			return herr
		}
		return flowerr.DependencyFailed(c.NodeID())
	}

	// The node itself.
	if err := runNodeLogicOnly(c, guard); err != nil {
		if !routable(err) {
			return err
		}
		if herr := handleError(c, err.Error(), guard); herr != nil {
			return herr
		}
		return err
	}

	if !withSuccessors {
		return nil
	}

	return walkSuccessors(c, func(sub *Context, localGuard *Guard) error {
		return runDependencies(sub, localGuard)
	})
}

// TriggerWithDependencies is the batch form of Trigger: parent resolution
// reads a precomputed node_id -> parents map instead of walking the graph.
// The guard is carried across the entire batch, so reentrant roots skip
// instead of re-running.
func TriggerWithDependencies(c *Context, guard *Guard, withSuccessors bool, deps map[string][]*node.RuntimeNode) error {
	if guard == nil {
		guard = NewGuard()
	}

	c.setState(node.StateRunning)
	n := c.Node()

	if guard.Has(n.ID()) {
		c.Log(fmt.Sprintf("Recursion detected for: %s", n.ID()), trace.LevelDebug)
		c.EndTrace()
		return nil
	}
	guard.Add(n.ID())

	if err := runDependenciesFromMap(c, guard, deps); err != nil {
		c.EndTrace()
		if !routable(err) {
			return err
		}
		if herr := handleError(c, err.Error(), guard); herr != nil {
			return herr
		}
		return flowerr.DependencyFailed(n.ID())
	}

	// Run this node directly: the guard check already happened above, so
	// going through runNodeLogicOnly again would skip it.
	if err := runGuardedLogic(c); err != nil {
		if !routable(err) {
			return err
		}
		if herr := handleError(c, err.Error(), guard); herr != nil {
			return herr
		}
		return err
	}

	if !withSuccessors {
		return nil
	}

	return walkSuccessors(c, func(sub *Context, localGuard *Guard) error {
		return runDependenciesFromMap(sub, localGuard, deps)
	})
}

// runGuardedLogic runs the node body assuming the caller already passed
// the recursion guard.
func runGuardedLogic(c *Context) error {
	if err := c.cancelled(); err != nil {
		return err
	}

	n := c.Node()
	entry := trace.NewLogMessage(fmt.Sprintf("Starting node execution: %s [%s]", n.Name(), n.ID()), trace.LevelDebug)
	if c.hooks != nil && c.hooks.OnNodeStart != nil {
		c.hooks.OnNodeStart(n.ID(), n.Name())
	}

	err := n.Logic().Run(c)
	n.MarkExecuted()
	if err == nil {
		err = c.cancelled()
	}

	if err != nil {
		c.Log(fmt.Sprintf("Failed to execute node: %s", err), trace.LevelError)
		entry.Finish()
		c.appendEntry(entry)
		c.EndTrace()
		c.setState(node.StateError)
		if c.hooks != nil && c.hooks.OnNodeError != nil {
			c.hooks.OnNodeError(n.ID(), err)
		}
		return classifyRunError(n.ID(), err)
	}

	c.setState(node.StateSuccess)
	entry.Finish()
	c.appendEntry(entry)
	c.EndTrace()
	if c.hooks != nil && c.hooks.OnNodeComplete != nil {
		c.hooks.OnNodeComplete(n.ID(), n.Name())
	}
	return nil
}

// walkSuccessors drives the exec graph depth-first from the context node's
// truthy exec outputs. Targets pop off a work stack; each target runs its
// dependencies (via depRunner), then its logic, then pushes its own truthy
// successors. The visited set is identity-keyed, so within one trigger a
// node is invoked at most once. Every successor branch gets a fresh
// recursion guard.
//
// The first failure aborts the whole walk; remaining siblings are not
// attempted.
func walkSuccessors(c *Context, depRunner func(*Context, *Guard) error) error {
	stack := c.Node().ConnectedExecTargets(true)
	seen := make(map[*node.RuntimeNode]struct{}, len(stack)*2)
	seen[c.Node()] = struct{}{}

	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := seen[next.Node]; ok {
			continue
		}
		seen[next.Node] = struct{}{}

		sub := c.CreateSubContext(next.Node)
		sub.startedBy = next.ThroughPins
		localGuard := NewGuard()

		if err := depRunner(sub, localGuard); err != nil {
			sub.EndTrace()
			c.PushSubContext(sub)
			if !routable(err) {
				return err
			}
			if herr := handleError(sub, err.Error(), localGuard); herr != nil {
				return herr
			}
			return flowerr.DependencyFailed(next.Node.ID())
		}

		if err := runNodeLogicOnly(sub, localGuard); err != nil {
			if !routable(err) {
				sub.EndTrace()
				c.PushSubContext(sub)
				return err
			}
			if herr := handleError(sub, err.Error(), localGuard); herr != nil {
				sub.EndTrace()
				c.PushSubContext(sub)
				return herr
			}
			sub.EndTrace()
			c.PushSubContext(sub)
			return err
		}

		stack = append(stack, next.Node.ConnectedExecTargets(true)...)

		sub.EndTrace()
		c.PushSubContext(sub)
	}

	return nil
}
