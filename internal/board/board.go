// Package board holds the resolved runtime graph the engine executes: node
// and pin lookup plus the builder that wires descriptors into runtime
// nodes, pins and edges.
package board

import (
	"fmt"

	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Board is the lookup surface the engine consumes.
type Board interface {
	node.BoardAccess

	// Nodes returns every node on the board in insertion order.
	Nodes() []*node.RuntimeNode

	// NodesForEvent returns the nodes to execute for a trigger event.
	NodesForEvent(event string) []*node.RuntimeNode
}

// InMemory is the resolved in-memory board.
type InMemory struct {
	nodes  map[string]*node.RuntimeNode
	order  []string
	pins   map[string]*node.RuntimePin
	events map[string][]string
}

// NodeByID implements BoardAccess.
func (b *InMemory) NodeByID(id string) (*node.RuntimeNode, bool) {
	n, ok := b.nodes[id]
	return n, ok
}

// PinByID implements BoardAccess. The index covers node-owned pins and
// relay pins alike.
func (b *InMemory) PinByID(id string) (*node.RuntimePin, bool) {
	p, ok := b.pins[id]
	return p, ok
}

// NodesForEvent returns the nodes bound to a trigger event, in binding
// order.
func (b *InMemory) NodesForEvent(event string) []*node.RuntimeNode {
	ids := b.events[event]
	out := make([]*node.RuntimeNode, 0, len(ids))
	for _, id := range ids {
		if n, ok := b.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Nodes returns every node in insertion order.
func (b *InMemory) Nodes() []*node.RuntimeNode {
	out := make([]*node.RuntimeNode, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.nodes[id])
	}
	return out
}

// ResetRuntime clears every node's runtime state. Called by the engine at
// the start of each top-level invocation.
func (b *InMemory) ResetRuntime() {
	for _, id := range b.order {
		b.nodes[id].ResetRuntime()
	}
	for _, pin := range b.pins {
		if pin.IsRelay() {
			pin.Clear()
		}
	}
}

// Builder assembles an in-memory board. Errors accumulate and surface at
// Build so wiring code reads linearly.
type Builder struct {
	board *InMemory
	errs  []error
}

// NewBuilder creates an empty board builder.
func NewBuilder() *Builder {
	return &Builder{board: &InMemory{
		nodes:  make(map[string]*node.RuntimeNode),
		pins:   make(map[string]*node.RuntimePin),
		events: make(map[string][]string),
	}}
}

// BindEvent registers a node as a root for the given trigger event.
func (b *Builder) BindEvent(event, nodeID string) *Builder {
	if _, ok := b.board.nodes[nodeID]; !ok {
		b.errs = append(b.errs, fmt.Errorf("bind event %s: node %s not found", event, nodeID))
		return b
	}
	b.board.events[event] = append(b.board.events[event], nodeID)
	return b
}

// AddNode instantiates a runtime node from its logic and registers its
// pins.
func (b *Builder) AddNode(id string, logic node.NodeLogic) *node.RuntimeNode {
	if _, exists := b.board.nodes[id]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate node id %s", id))
		return b.board.nodes[id]
	}
	n := node.NewRuntimeNode(id, logic)
	b.board.nodes[id] = n
	b.board.order = append(b.board.order, id)
	for pinID, pin := range n.Pins() {
		b.board.pins[pinID] = pin
	}
	return n
}

// AddRelayPin registers a standalone pin with no owning node. Relay pins
// are traversed transparently by every walk.
func (b *Builder) AddRelayPin(def *types.Pin) *node.RuntimePin {
	clone := def.Clone()
	if clone.ID == "" {
		b.errs = append(b.errs, fmt.Errorf("relay pin needs an id"))
		return nil
	}
	if _, exists := b.board.pins[clone.ID]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate pin id %s", clone.ID))
		return b.board.pins[clone.ID]
	}
	pin := node.NewRuntimePin(clone, nil)
	b.board.pins[clone.ID] = pin
	return pin
}

// Connect wires a producer pin to a consumer pin by id. Connections
// involving a relay pin skip type validation; the relay inherits whatever
// flows through it.
func (b *Builder) Connect(fromID, toID string) *Builder {
	from, ok := b.board.pins[fromID]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("connect: pin %s not found", fromID))
		return b
	}
	to, ok := b.board.pins[toID]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("connect: pin %s not found", toID))
		return b
	}
	if !from.IsRelay() && !to.IsRelay() {
		if err := from.Def().ValidateConnection(to.Def()); err != nil {
			b.errs = append(b.errs, fmt.Errorf("connect %s -> %s: %w", fromID, toID, err))
			return b
		}
	}
	from.AddConnection(to)
	to.AddDependency(from)
	from.Def().ConnectedTo = append(from.Def().ConnectedTo, toID)
	to.Def().DependsOn = append(to.Def().DependsOn, fromID)
	return b
}

// SetDefault overrides the serialized default on a pin.
func (b *Builder) SetDefault(pinID string, v types.Value) *Builder {
	pin, ok := b.board.pins[pinID]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("default: pin %s not found", pinID))
		return b
	}
	pin.Def().SetDefault(v)
	return b
}

// Build finalizes the board, surfacing any wiring errors.
func (b *Builder) Build() (*InMemory, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("board has %d wiring errors, first: %w", len(b.errs), b.errs[0])
	}
	return b.board, nil
}
