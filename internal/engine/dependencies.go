package engine

import (
	"fmt"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
)

type walkPhase uint8

const (
	phaseEnter walkPhase = iota
	phaseExit
)

type stackItem struct {
	node  *node.RuntimeNode
	phase walkPhase
}

// parentsMemo caches resolved pure-parent sets per node identity for the
// duration of one walk.
type parentsMemo map[*node.RuntimeNode][]*node.RuntimeNode

func (m parentsMemo) pureParents(n *node.RuntimeNode) []*node.RuntimeNode {
	if parents, ok := m[n]; ok {
		return parents
	}
	parents := n.PureParents()
	m[n] = parents
	return parents
}

// runDependencies resolves and runs the pure ancestors of the context's
// node in post order. The walk is strictly iterative: graphs can carry
// thousands of nodes and must never grow the call stack.
//
// A node on the visiting set seen again on Enter is a dependency cycle and
// aborts the walk. On Exit the node runs once (no successors) unless the
// recursion guard already holds its id, which downgrades the run to a
// debug-logged skip.
func runDependencies(c *Context, guard *Guard) error {
	memo := make(parentsMemo, 16)

	roots := memo.pureParents(c.Node())
	stack := make([]stackItem, 0, len(roots)*2)
	for _, root := range roots {
		stack = append(stack, stackItem{node: root, phase: phaseEnter})
	}

	scheduled := make(map[*node.RuntimeNode]struct{}, len(stack)*2)
	visiting := make(map[*node.RuntimeNode]struct{}, len(stack)*2)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := item.node

		switch item.phase {
		case phaseEnter:
			if _, ok := scheduled[n]; ok {
				continue
			}
			if _, ok := visiting[n]; ok {
				c.Log("Cycle detected while resolving dependencies", trace.LevelError)
				return flowerr.CycleDetected(fmt.Sprintf("dependency cycle through node %s", n.ID()))
			}
			visiting[n] = struct{}{}
			stack = append(stack, stackItem{node: n, phase: phaseExit})

			for _, parent := range memo.pureParents(n) {
				if _, ok := scheduled[parent]; ok {
					continue
				}
				stack = append(stack, stackItem{node: parent, phase: phaseEnter})
			}

		case phaseExit:
			delete(visiting, n)
			if _, ok := scheduled[n]; ok {
				continue
			}

			if guard.Has(n.ID()) {
				c.Log(fmt.Sprintf("Recursion detected for: %s, skipping execution", n.ID()), trace.LevelDebug)
				scheduled[n] = struct{}{}
				continue
			}

			if err := runDependencyNode(c, n, guard); err != nil {
				c.Log(fmt.Sprintf("Failed to run dependency: %s", n.Name()), trace.LevelError)
				return err
			}
			scheduled[n] = struct{}{}
		}
	}

	return nil
}

// runDependenciesFromMap is the precomputed form of runDependencies: the
// parent lookup is a map read keyed by node id instead of a graph walk.
// Embedding hosts use this to batch large runs without per-call resolver
// work.
func runDependenciesFromMap(c *Context, guard *Guard, deps map[string][]*node.RuntimeNode) error {
	rootID := c.Node().ID()

	var stack []stackItem
	if roots, ok := deps[rootID]; ok {
		stack = make([]stackItem, 0, len(roots)*2)
		for _, root := range roots {
			stack = append(stack, stackItem{node: root, phase: phaseEnter})
		}
	}

	scheduled := make(map[*node.RuntimeNode]struct{}, len(stack)*2)
	visiting := make(map[*node.RuntimeNode]struct{}, len(stack)*2)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := item.node

		switch item.phase {
		case phaseEnter:
			if _, ok := scheduled[n]; ok {
				continue
			}
			if _, ok := visiting[n]; ok {
				c.Log("Cycle detected while resolving mapped dependencies", trace.LevelError)
				return flowerr.CycleDetected(fmt.Sprintf("dependency cycle through node %s", n.ID()))
			}
			visiting[n] = struct{}{}
			stack = append(stack, stackItem{node: n, phase: phaseExit})

			for _, child := range deps[n.ID()] {
				if _, ok := scheduled[child]; ok {
					continue
				}
				stack = append(stack, stackItem{node: child, phase: phaseEnter})
			}

		case phaseExit:
			delete(visiting, n)
			if _, ok := scheduled[n]; ok {
				continue
			}

			if guard.Has(n.ID()) {
				c.Log(fmt.Sprintf("Recursion detected for: %s, skipping execution", n.ID()), trace.LevelDebug)
				scheduled[n] = struct{}{}
				continue
			}

			if err := runDependencyNode(c, n, guard); err != nil {
				c.Log("Failed to run mapped dependency", trace.LevelError)
				return err
			}
			scheduled[n] = struct{}{}
		}
	}

	return nil
}

// runDependencyNode runs a single dependency (no successors) in its own
// sub-context, bracketing the call with a debug entry on the parent.
func runDependencyNode(c *Context, n *node.RuntimeNode, guard *Guard) error {
	sub := c.CreateSubContext(n)
	entry := trace.NewLogMessage(fmt.Sprintf("Running dependency: %s", n.Name()), trace.LevelDebug)

	err := runNodeLogicOnly(sub, guard)

	entry.Finish()
	c.appendEntry(entry)
	sub.EndTrace()
	c.PushSubContext(sub)
	return err
}
