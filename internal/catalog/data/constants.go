// Package data holds the value-producing node kinds: constants. All of
// them are pure.
package data

import (
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// ConstantBool emits a constant boolean value.
type ConstantBool struct{}

// NewConstantBool creates the logic object.
func NewConstantBool() *ConstantBool { return &ConstantBool{} }

// Describe returns the node metadata.
func (*ConstantBool) Describe() node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          "constant_bool",
		Name:        "Constant Boolean",
		Description: "Generates a constant boolean value",
		Category:    "Utils/Bool",
		Icon:        "/flow/icons/grip.svg",
		Inputs: []types.Pin{
			*literalPin(types.TypeBoolean, types.Bool(false)),
		},
		Outputs: []types.Pin{
			{Name: "value", FriendlyName: "Value", Description: "The constant boolean value", Type: types.TypeBoolean, Shape: types.ShapeScalar},
		},
	}
}

// Run copies the literal onto the output.
func (*ConstantBool) Run(ctx node.ExecutionContext) error {
	v, err := ctx.EvaluatePin("_literal")
	if err != nil {
		return err
	}
	b, err := v.AsBool()
	if err != nil {
		return err
	}
	return ctx.SetPinValue("value", types.Bool(b))
}

// ConstantInt emits a constant integer value.
type ConstantInt struct{}

// NewConstantInt creates the logic object.
func NewConstantInt() *ConstantInt { return &ConstantInt{} }

// Describe returns the node metadata.
func (*ConstantInt) Describe() node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          "constant_int",
		Name:        "Constant Integer",
		Description: "Generates a constant integer value",
		Category:    "Utils/Int",
		Icon:        "/flow/icons/grip.svg",
		Inputs: []types.Pin{
			*literalPin(types.TypeInteger, types.Int(0)),
		},
		Outputs: []types.Pin{
			{Name: "value", FriendlyName: "Value", Description: "The constant integer value", Type: types.TypeInteger, Shape: types.ShapeScalar},
		},
	}
}

// Run copies the literal onto the output.
func (*ConstantInt) Run(ctx node.ExecutionContext) error {
	v, err := ctx.EvaluatePin("_literal")
	if err != nil {
		return err
	}
	i, err := v.AsInt()
	if err != nil {
		return err
	}
	return ctx.SetPinValue("value", types.Int(i))
}

// ConstantFloat emits a constant float value.
type ConstantFloat struct{}

// NewConstantFloat creates the logic object.
func NewConstantFloat() *ConstantFloat { return &ConstantFloat{} }

// Describe returns the node metadata.
func (*ConstantFloat) Describe() node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          "constant_float",
		Name:        "Constant Float",
		Description: "Generates a constant float value",
		Category:    "Utils/Float",
		Icon:        "/flow/icons/grip.svg",
		Inputs: []types.Pin{
			*literalPin(types.TypeFloat, types.Float(0)),
		},
		Outputs: []types.Pin{
			{Name: "value", FriendlyName: "Value", Description: "The constant float value", Type: types.TypeFloat, Shape: types.ShapeScalar},
		},
	}
}

// Run copies the literal onto the output.
func (*ConstantFloat) Run(ctx node.ExecutionContext) error {
	v, err := ctx.EvaluatePin("_literal")
	if err != nil {
		return err
	}
	f, err := v.AsFloat()
	if err != nil {
		return err
	}
	return ctx.SetPinValue("value", types.Float(f))
}

// ConstantString emits a constant string value.
type ConstantString struct{}

// NewConstantString creates the logic object.
func NewConstantString() *ConstantString { return &ConstantString{} }

// Describe returns the node metadata.
func (*ConstantString) Describe() node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          "constant_string",
		Name:        "Constant String",
		Description: "Generates a constant string value",
		Category:    "Utils/String",
		Icon:        "/flow/icons/grip.svg",
		Inputs: []types.Pin{
			*literalPin(types.TypeString, types.String("")),
		},
		Outputs: []types.Pin{
			{Name: "value", FriendlyName: "Value", Description: "The constant string value", Type: types.TypeString, Shape: types.ShapeScalar},
		},
	}
}

// Run copies the literal onto the output.
func (*ConstantString) Run(ctx node.ExecutionContext) error {
	v, err := ctx.EvaluatePin("_literal")
	if err != nil {
		return err
	}
	s, err := v.AsString()
	if err != nil {
		return err
	}
	return ctx.SetPinValue("value", types.String(s))
}

func literalPin(t types.DataType, def types.Value) *types.Pin {
	pin := &types.Pin{
		Name:         "_literal",
		FriendlyName: "_literal",
		Description:  "The literal value of the constant",
		Type:         t,
		Shape:        types.ShapeScalar,
	}
	return pin.SetDefault(def)
}
