package node

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// RuntimePin is the live counterpart of a pin description: the descriptor
// plus a mutable value slot and the resolved edge sets. A pin with no owner
// is a relay pin and is traversed transparently.
type RuntimePin struct {
	def   *types.Pin
	owner *RuntimeNode

	valueMu sync.Mutex
	value   *types.Value

	edgeMu      sync.RWMutex
	dependsOn   []*RuntimePin
	connectedTo []*RuntimePin

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
}

// NewRuntimePin wraps a descriptor. Owner is nil for relay pins.
func NewRuntimePin(def *types.Pin, owner *RuntimeNode) *RuntimePin {
	return &RuntimePin{def: def, owner: owner}
}

// Def returns the pin description.
func (p *RuntimePin) Def() *types.Pin { return p.def }

// Owner returns the owning node, or nil for relay pins.
func (p *RuntimePin) Owner() *RuntimeNode { return p.owner }

// IsRelay reports whether the pin has no owning node.
func (p *RuntimePin) IsRelay() bool { return p.owner == nil }

// DependsOn returns the upstream edge set.
func (p *RuntimePin) DependsOn() []*RuntimePin {
	p.edgeMu.RLock()
	defer p.edgeMu.RUnlock()
	return append([]*RuntimePin(nil), p.dependsOn...)
}

// ConnectedTo returns the downstream edge set.
func (p *RuntimePin) ConnectedTo() []*RuntimePin {
	p.edgeMu.RLock()
	defer p.edgeMu.RUnlock()
	return append([]*RuntimePin(nil), p.connectedTo...)
}

// AddDependency records src as an upstream producer of this pin.
func (p *RuntimePin) AddDependency(src *RuntimePin) {
	p.edgeMu.Lock()
	p.dependsOn = append(p.dependsOn, src)
	p.edgeMu.Unlock()
}

// AddConnection records dst as a downstream consumer of this pin.
func (p *RuntimePin) AddConnection(dst *RuntimePin) {
	p.edgeMu.Lock()
	p.connectedTo = append(p.connectedTo, dst)
	p.edgeMu.Unlock()
}

// RemoveDependency drops an upstream edge. Traversals treat the missing
// edge as if it never existed.
func (p *RuntimePin) RemoveDependency(src *RuntimePin) {
	p.edgeMu.Lock()
	p.dependsOn = removePin(p.dependsOn, src)
	p.edgeMu.Unlock()
}

// RemoveConnection drops a downstream edge.
func (p *RuntimePin) RemoveConnection(dst *RuntimePin) {
	p.edgeMu.Lock()
	p.connectedTo = removePin(p.connectedTo, dst)
	p.edgeMu.Unlock()
}

func removePin(pins []*RuntimePin, target *RuntimePin) []*RuntimePin {
	out := pins[:0]
	for _, pin := range pins {
		if pin != target {
			out = append(out, pin)
		}
	}
	return out
}

// Value returns the current value, if set.
func (p *RuntimePin) Value() (types.Value, bool) {
	p.valueMu.Lock()
	defer p.valueMu.Unlock()
	if p.value == nil {
		return types.Null(), false
	}
	return *p.value, true
}

// SetValue writes the current value, validating against the declared schema
// when the pin opts in. Writes are non-blocking.
func (p *RuntimePin) SetValue(v types.Value) error {
	if p.def.Options != nil && p.def.Options.EnforceSchema && p.def.Schema != "" {
		schema, err := p.compiledSchema()
		if err != nil {
			return flowerr.ValidationFailed(p.def.Name, err)
		}
		if err := schema.Validate(v.Interface()); err != nil {
			return flowerr.ValidationFailed(p.def.Name, err)
		}
	}
	p.valueMu.Lock()
	p.value = &v
	p.valueMu.Unlock()
	return nil
}

// Clear drops the current value.
func (p *RuntimePin) Clear() {
	p.valueMu.Lock()
	p.value = nil
	p.valueMu.Unlock()
}

// Default decodes the descriptor's default value.
func (p *RuntimePin) Default() (types.Value, bool) {
	if !p.def.HasDefault() {
		return types.Null(), false
	}
	v, err := p.def.DecodeDefault()
	if err != nil {
		return types.Null(), false
	}
	return v, true
}

// Evaluate resolves the pin's effective value: its own current value, the
// first value found walking upstream through relay pins, or the declared
// default. PinNotReady when none apply.
func (p *RuntimePin) Evaluate() (types.Value, error) {
	if v, ok := p.Value(); ok {
		return v, nil
	}
	if v, ok := p.upstreamValue(); ok {
		return v, nil
	}
	if v, ok := p.Default(); ok {
		return v, nil
	}
	ownerID := ""
	if p.owner != nil {
		ownerID = p.owner.ID()
	}
	return types.Null(), flowerr.PinNotReady(ownerID, p.def.Name)
}

// upstreamValue searches the upstream producers, relaying through
// standalone pins, for the first concrete value.
func (p *RuntimePin) upstreamValue() (types.Value, bool) {
	visited := make(map[*RuntimePin]struct{}, 4)
	stack := p.DependsOn()
	for len(stack) > 0 {
		dep := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if dep == nil {
			continue
		}
		if _, seen := visited[dep]; seen {
			continue
		}
		visited[dep] = struct{}{}

		if v, ok := dep.Value(); ok {
			return v, true
		}
		if dep.IsRelay() {
			stack = append(stack, dep.DependsOn()...)
			continue
		}
		if v, ok := dep.Default(); ok {
			return v, true
		}
	}
	return types.Null(), false
}

func (p *RuntimePin) compiledSchema() (*jsonschema.Schema, error) {
	p.schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		resource := fmt.Sprintf("pin-%s.json", p.def.ID)
		if err := compiler.AddResource(resource, strings.NewReader(p.def.Schema)); err != nil {
			p.schemaErr = err
			return
		}
		p.schema, p.schemaErr = compiler.Compile(resource)
	})
	return p.schema, p.schemaErr
}
