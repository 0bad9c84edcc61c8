package types

import (
	"encoding/json"
	"fmt"
)

// DataType is the kind of data a pin carries. Execution pins carry control
// tokens instead of values.
type DataType string

const (
	TypeExecution DataType = "execution"
	TypeBoolean   DataType = "boolean"
	TypeInteger   DataType = "integer"
	TypeFloat     DataType = "float"
	TypeString    DataType = "string"
	TypeBytes     DataType = "bytes"
	TypeStruct    DataType = "struct"
	TypeGeneric   DataType = "generic"
)

// ValueShape describes the container shape of a pin's value.
type ValueShape string

const (
	ShapeScalar ValueShape = "scalar"
	ShapeArray  ValueShape = "array"
	ShapeMap    ValueShape = "map"
	ShapeSet    ValueShape = "set"
)

// PinDirection distinguishes inputs from outputs.
type PinDirection string

const (
	DirectionInput  PinDirection = "input"
	DirectionOutput PinDirection = "output"
)

// PinOptions are editor- and runtime-facing knobs attached to a pin.
type PinOptions struct {
	Sensitive     bool        `json:"sensitive,omitempty"`
	ValidValues   []string    `json:"validValues,omitempty"`
	Range         *[2]float64 `json:"range,omitempty"`
	Step          *float64    `json:"step,omitempty"`
	EnforceSchema bool        `json:"enforceSchema,omitempty"`
}

// Pin is the persisted description of a port on a node. The runtime value
// slot lives on the runtime pin, not here; encoding and decoding a Pin
// round-trips everything else.
type Pin struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	FriendlyName string       `json:"friendlyName,omitempty"`
	Description  string       `json:"description,omitempty"`
	Direction    PinDirection `json:"direction"`
	Type         DataType     `json:"type"`
	Shape        ValueShape   `json:"shape,omitempty"`
	Schema       string       `json:"schema,omitempty"`
	DependsOn    []string     `json:"dependsOn,omitempty"`
	ConnectedTo  []string     `json:"connectedTo,omitempty"`
	Default      []byte       `json:"default,omitempty"`
	Index        int          `json:"index,omitempty"`
	Options      *PinOptions  `json:"options,omitempty"`
}

// IsExecution reports whether the pin carries execution tokens.
func (p *Pin) IsExecution() bool { return p.Type == TypeExecution }

// IsInput reports whether the pin is an input.
func (p *Pin) IsInput() bool { return p.Direction == DirectionInput }

// IsOutput reports whether the pin is an output.
func (p *Pin) IsOutput() bool { return p.Direction == DirectionOutput }

// HasDefault reports whether a serialized default is present.
func (p *Pin) HasDefault() bool { return len(p.Default) > 0 }

// SetDefault serializes the given value as the pin default.
func (p *Pin) SetDefault(v Value) *Pin {
	data, err := json.Marshal(v)
	if err != nil {
		return p
	}
	p.Default = data
	return p
}

// DecodeDefault decodes the serialized default value.
func (p *Pin) DecodeDefault() (Value, error) {
	if !p.HasDefault() {
		return Null(), fmt.Errorf("pin %s has no default value", p.ID)
	}
	var v Value
	if err := json.Unmarshal(p.Default, &v); err != nil {
		return Null(), fmt.Errorf("pin %s: invalid default value: %w", p.ID, err)
	}
	return v, nil
}

// Clone returns a deep copy of the pin description.
func (p *Pin) Clone() *Pin {
	out := *p
	out.DependsOn = append([]string(nil), p.DependsOn...)
	out.ConnectedTo = append([]string(nil), p.ConnectedTo...)
	out.Default = append([]byte(nil), p.Default...)
	if p.Options != nil {
		opts := *p.Options
		opts.ValidValues = append([]string(nil), p.Options.ValidValues...)
		out.Options = &opts
	}
	return &out
}

// ValidateConnection checks whether this pin, as the producer side, may feed
// the target pin. Execution pins only connect to execution pins; generic
// data pins connect to anything that is not an execution pin.
func (p *Pin) ValidateConnection(target *Pin) error {
	if !p.IsOutput() || !target.IsInput() {
		return fmt.Errorf("connections run output to input, got %s -> %s", p.Direction, target.Direction)
	}
	if p.IsExecution() != target.IsExecution() {
		return fmt.Errorf("cannot connect %s pin to %s pin", p.Type, target.Type)
	}
	if p.IsExecution() {
		return nil
	}
	if p.Type == TypeGeneric || target.Type == TypeGeneric {
		return nil
	}
	if p.Type != target.Type {
		return fmt.Errorf("incompatible pin types: %s -> %s", p.Type, target.Type)
	}
	if p.Shape != "" && target.Shape != "" && p.Shape != target.Shape {
		return fmt.Errorf("incompatible pin shapes: %s -> %s", p.Shape, target.Shape)
	}
	return nil
}
