package node

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/GitBrincie212/flow-like/pkg/types"
)

// State is the per-invocation lifecycle of a node.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateSuccess
	StateError
)

// String returns the serialized state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Errors raised by ErrorHandledTargets when the well-known error pin is
// absent or holds no truthy token.
var (
	ErrErrorPinMissing  = errors.New("error pin missing")
	ErrErrorPinInactive = errors.New("error pin not active")
)

// ExecTarget is one downstream impure node reached from an exec output,
// together with the set of pins the walk arrived through.
type ExecTarget struct {
	Node        *RuntimeNode
	ThroughPins []*RuntimePin
}

// RuntimeNode owns a set of runtime pins and the logic object attached to
// them. Nodes and pins are created at board-load time and persist for the
// board's lifetime; only the runtime state resets between invocations.
type RuntimeNode struct {
	id    string
	name  string
	logic NodeLogic

	pinMu sync.RWMutex
	pins  map[string]*RuntimePin

	state     atomic.Int32
	execCalls atomic.Uint64

	cacheMu   sync.Mutex
	nameCache map[string][]*RuntimePin
}

// NewRuntimeNode creates a node and instantiates its pins from the logic
// descriptor. Pin ids are namespaced under the node id.
func NewRuntimeNode(id string, logic NodeLogic) *RuntimeNode {
	desc := logic.Describe()
	n := &RuntimeNode{
		id:    id,
		name:  desc.Name,
		logic: logic,
		pins:  make(map[string]*RuntimePin, len(desc.Inputs)+len(desc.Outputs)),
	}
	for i := range desc.Inputs {
		def := desc.Inputs[i].Clone()
		def.Direction = types.DirectionInput
		n.addPinLocked(def)
	}
	for i := range desc.Outputs {
		def := desc.Outputs[i].Clone()
		def.Direction = types.DirectionOutput
		n.addPinLocked(def)
	}
	return n
}

func (n *RuntimeNode) addPinLocked(def *types.Pin) *RuntimePin {
	if def.ID == "" {
		def.ID = def.Name
	}
	def.ID = n.id + ":" + def.ID
	pin := NewRuntimePin(def, n)
	n.pins[def.ID] = pin
	return pin
}

// ID returns the node id.
func (n *RuntimeNode) ID() string { return n.id }

// Name returns the human-readable node name.
func (n *RuntimeNode) Name() string { return n.name }

// Logic returns the attached logic object.
func (n *RuntimeNode) Logic() NodeLogic { return n.logic }

// Pins returns a snapshot of the node's pins keyed by pin id.
func (n *RuntimeNode) Pins() map[string]*RuntimePin {
	n.pinMu.RLock()
	defer n.pinMu.RUnlock()
	out := make(map[string]*RuntimePin, len(n.pins))
	for id, pin := range n.pins {
		out[id] = pin
	}
	return out
}

// AddPin attaches a new pin at runtime. Used by structural updates
// (Updater implementations); invalidates the name cache.
func (n *RuntimeNode) AddPin(def *types.Pin) *RuntimePin {
	n.pinMu.Lock()
	pin := n.addPinLocked(def.Clone())
	n.pinMu.Unlock()
	n.InvalidateNameCache()
	return pin
}

// RemovePin detaches a pin and severs its edges on both ends.
func (n *RuntimeNode) RemovePin(id string) {
	n.pinMu.Lock()
	pin, ok := n.pins[id]
	if ok {
		delete(n.pins, id)
	}
	n.pinMu.Unlock()
	if !ok {
		return
	}
	for _, dep := range pin.DependsOn() {
		dep.RemoveConnection(pin)
	}
	for _, dst := range pin.ConnectedTo() {
		dst.RemoveDependency(pin)
	}
	n.InvalidateNameCache()
}

// State returns the current invocation state.
func (n *RuntimeNode) State() State { return State(n.state.Load()) }

// SetState transitions the invocation state.
func (n *RuntimeNode) SetState(s State) { n.state.Store(int32(s)) }

// ExecCount returns the number of logic invocations.
func (n *RuntimeNode) ExecCount() uint64 { return n.execCalls.Load() }

// MarkExecuted bumps the execution counter.
func (n *RuntimeNode) MarkExecuted() uint64 { return n.execCalls.Add(1) }

// ResetRuntime clears the runtime state: pin values, node state and the
// execution counter. Called at the start of each top-level invocation.
func (n *RuntimeNode) ResetRuntime() {
	for _, pin := range n.Pins() {
		pin.Clear()
	}
	n.state.Store(int32(StateIdle))
	n.execCalls.Store(0)
}

// IsPure reports whether the node has no execution pins. Purity is a
// structural property, not a flag.
func (n *RuntimeNode) IsPure() bool {
	n.pinMu.RLock()
	defer n.pinMu.RUnlock()
	for _, pin := range n.pins {
		if pin.Def().IsExecution() {
			return false
		}
	}
	return true
}

// Orphaned reports whether some input has neither an upstream producer nor
// a default value.
func (n *RuntimeNode) Orphaned() bool {
	for _, pin := range n.Pins() {
		if !pin.Def().IsInput() {
			continue
		}
		if len(pin.DependsOn()) == 0 && !pin.Def().HasDefault() {
			return true
		}
	}
	return false
}

// IsReady reports whether every input pin is satisfiable: execution inputs
// need at least one upstream with a truthy token this cycle; data inputs
// need every referenced upstream to hold a concrete value.
func (n *RuntimeNode) IsReady() (bool, error) {
	for _, pin := range n.Pins() {
		def := pin.Def()
		if !def.IsInput() {
			continue
		}
		deps := pin.DependsOn()
		if len(deps) == 0 && !def.HasDefault() {
			return false, nil
		}

		isExec := def.IsExecution()
		execValid := false
		for _, dep := range deps {
			if dep == nil {
				continue
			}
			v, ok := resolveUpstream(dep)
			if !ok && !isExec {
				return false, nil
			}
			if ok && v.Truthy() {
				execValid = true
			}
		}
		if isExec && len(deps) > 0 && !execValid {
			return false, nil
		}
	}
	return true, nil
}

// resolveUpstream finds the concrete value an upstream pin contributes,
// relaying through standalone pins.
func resolveUpstream(dep *RuntimePin) (types.Value, bool) {
	if v, ok := dep.Value(); ok {
		return v, true
	}
	if dep.IsRelay() {
		for _, next := range dep.DependsOn() {
			if next == nil {
				continue
			}
			if v, ok := resolveUpstream(next); ok {
				return v, true
			}
		}
	}
	return types.Null(), false
}

// PinByID returns a pin by its full id.
func (n *RuntimeNode) PinByID(id string) (*RuntimePin, error) {
	n.pinMu.RLock()
	pin, ok := n.pins[id]
	n.pinMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pin %s not found", id)
	}
	return pin, nil
}

// PinByName returns the first pin with the given name, lowest index first.
// Lookup is O(1) after the lazy name cache is populated on first query.
func (n *RuntimeNode) PinByName(name string) (*RuntimePin, error) {
	pins, err := n.PinsByName(name)
	if err != nil {
		return nil, err
	}
	return pins[0], nil
}

// PinsByName returns every pin carrying the given name.
func (n *RuntimeNode) PinsByName(name string) ([]*RuntimePin, error) {
	cache := n.ensureNameCache()
	pins, ok := cache[name]
	if !ok || len(pins) == 0 {
		return nil, fmt.Errorf("pin %s not found on node %s", name, n.id)
	}
	return pins, nil
}

// ensureNameCache populates the name cache on first use. Population is
// idempotent; concurrent double-populate is permitted and harmless.
func (n *RuntimeNode) ensureNameCache() map[string][]*RuntimePin {
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	if n.nameCache != nil {
		return n.nameCache
	}
	cache := make(map[string][]*RuntimePin)
	for _, pin := range n.Pins() {
		cache[pin.Def().Name] = append(cache[pin.Def().Name], pin)
	}
	for name := range cache {
		pins := cache[name]
		sort.SliceStable(pins, func(i, j int) bool {
			return pins[i].Def().Index < pins[j].Def().Index
		})
	}
	n.nameCache = cache
	return cache
}

// InvalidateNameCache drops the name cache after a structural pin change.
func (n *RuntimeNode) InvalidateNameCache() {
	n.cacheMu.Lock()
	n.nameCache = nil
	n.cacheMu.Unlock()
}

// sortedPins returns the node's pins ordered by descriptor index, so
// traversals are deterministic regardless of map iteration order.
func (n *RuntimeNode) sortedPins() []*RuntimePin {
	n.pinMu.RLock()
	pins := make([]*RuntimePin, 0, len(n.pins))
	for _, pin := range n.pins {
		pins = append(pins, pin)
	}
	n.pinMu.RUnlock()
	sort.SliceStable(pins, func(i, j int) bool {
		if pins[i].Def().Index != pins[j].Def().Index {
			return pins[i].Def().Index < pins[j].Def().Index
		}
		return pins[i].Def().ID < pins[j].Def().ID
	})
	return pins
}

// ConnectedOutputs collects the downstream nodes reachable from this
// node's output pins, relaying through standalone pins, de-duplicated by
// node identity.
func (n *RuntimeNode) ConnectedOutputs() []*RuntimeNode {
	var connected []*RuntimeNode
	seenNodes := make(map[*RuntimeNode]struct{})

	for _, pin := range n.sortedPins() {
		if !pin.Def().IsOutput() {
			continue
		}
		visited := make(map[*RuntimePin]struct{})
		stack := pin.ConnectedTo()
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if next == nil {
				continue
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}

			owner := next.Owner()
			if owner == nil {
				stack = append(stack, next.ConnectedTo()...)
				continue
			}
			if _, ok := seenNodes[owner]; !ok {
				seenNodes[owner] = struct{}{}
				connected = append(connected, owner)
			}
		}
	}
	return connected
}

// Dependencies collects the upstream nodes reachable from this node's
// input pins, relaying through standalone pins, de-duplicated by identity.
func (n *RuntimeNode) Dependencies() []*RuntimeNode {
	var dependencies []*RuntimeNode
	seenNodes := make(map[*RuntimeNode]struct{})

	for _, pin := range n.sortedPins() {
		if !pin.Def().IsInput() {
			continue
		}
		visited := make(map[*RuntimePin]struct{})
		stack := pin.DependsOn()
		for len(stack) > 0 {
			dep := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if dep == nil {
				continue
			}
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}

			owner := dep.Owner()
			if owner == nil {
				stack = append(stack, dep.DependsOn()...)
				continue
			}
			if _, ok := seenNodes[owner]; !ok {
				seenNodes[owner] = struct{}{}
				dependencies = append(dependencies, owner)
			}
		}
	}
	return dependencies
}

// PureParents collects the pure upstream nodes reachable through non-exec
// input pins, relaying through standalone pins. Never crosses exec edges.
func (n *RuntimeNode) PureParents() []*RuntimeNode {
	var parents []*RuntimeNode
	seenNodes := make(map[*RuntimeNode]struct{})

	for _, pin := range n.sortedPins() {
		def := pin.Def()
		if !def.IsInput() || def.IsExecution() {
			continue
		}
		visited := make(map[*RuntimePin]struct{})
		stack := pin.DependsOn()
		for len(stack) > 0 {
			dep := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if dep == nil {
				continue
			}
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}

			owner := dep.Owner()
			if owner == nil {
				stack = append(stack, dep.DependsOn()...)
				continue
			}
			if !owner.IsPure() {
				continue
			}
			if _, ok := seenNodes[owner]; !ok {
				seenNodes[owner] = struct{}{}
				parents = append(parents, owner)
			}
		}
	}
	return parents
}

// ConnectedExecTargets collects the downstream impure nodes reachable from
// this node's exec outputs, grouped by node with duplicate through-pins
// removed. With filterValid set, an exec output contributes only when its
// current token evaluates truthy.
func (n *RuntimeNode) ConnectedExecTargets(filterValid bool) []ExecTarget {
	type group struct {
		target   *ExecTarget
		seenPins map[*RuntimePin]struct{}
	}
	groups := make(map[*RuntimeNode]*group)
	var order []*RuntimeNode

	for _, pin := range n.sortedPins() {
		def := pin.Def()
		if !def.IsOutput() || !def.IsExecution() {
			continue
		}
		if filterValid {
			v, err := pin.Evaluate()
			if err != nil || !v.Truthy() {
				continue
			}
		}

		visited := make(map[*RuntimePin]struct{})
		stack := pin.ConnectedTo()
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if next == nil {
				continue
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}

			owner := next.Owner()
			if owner == nil {
				stack = append(stack, next.ConnectedTo()...)
				continue
			}
			g, ok := groups[owner]
			if !ok {
				g = &group{
					target:   &ExecTarget{Node: owner},
					seenPins: make(map[*RuntimePin]struct{}, 4),
				}
				groups[owner] = g
				order = append(order, owner)
			}
			if _, dup := g.seenPins[next]; !dup {
				g.seenPins[next] = struct{}{}
				g.target.ThroughPins = append(g.target.ThroughPins, next)
			}
		}
	}

	out := make([]ExecTarget, 0, len(order))
	for _, owner := range order {
		out = append(out, *groups[owner].target)
	}
	return out
}

// ErrorHandledTargets returns the downstream nodes of the well-known
// auto_handle_error exec output. Fails when the pin is absent or its token
// is not truthy.
func (n *RuntimeNode) ErrorHandledTargets() ([]*RuntimeNode, error) {
	pin, err := n.PinByName(PinAutoHandleError)
	if err != nil {
		return nil, ErrErrorPinMissing
	}
	def := pin.Def()
	if !def.IsOutput() || !def.IsExecution() {
		return nil, ErrErrorPinMissing
	}
	v, err := pin.Evaluate()
	if err != nil || !v.Truthy() {
		return nil, ErrErrorPinInactive
	}

	var connected []*RuntimeNode
	seenNodes := make(map[*RuntimeNode]struct{})
	visited := make(map[*RuntimePin]struct{})
	stack := pin.ConnectedTo()
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if next == nil {
			continue
		}
		if _, ok := visited[next]; ok {
			continue
		}
		visited[next] = struct{}{}

		owner := next.Owner()
		if owner == nil {
			stack = append(stack, next.ConnectedTo()...)
			continue
		}
		if _, ok := seenNodes[owner]; !ok {
			seenNodes[owner] = struct{}{}
			connected = append(connected, owner)
		}
	}
	return connected, nil
}
