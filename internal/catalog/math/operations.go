// Package math holds the arithmetic node kinds. The binary operators are
// pure; Divide is impure because division can fail and carries the error
// handling pins.
package math

import (
	"fmt"

	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Add sums two numbers.
type Add struct{}

// NewAdd creates the logic object.
func NewAdd() *Add { return &Add{} }

// Describe returns the node metadata.
func (*Add) Describe() node.NodeDescriptor {
	return binaryDescriptor("add", "Add", "Adds two numbers")
}

// Run computes a + b.
func (*Add) Run(ctx node.ExecutionContext) error {
	return runBinary(ctx, func(a, b float64) (float64, error) { return a + b, nil })
}

// Subtract subtracts b from a.
type Subtract struct{}

// NewSubtract creates the logic object.
func NewSubtract() *Subtract { return &Subtract{} }

// Describe returns the node metadata.
func (*Subtract) Describe() node.NodeDescriptor {
	return binaryDescriptor("subtract", "Subtract", "Subtracts the second number from the first")
}

// Run computes a - b.
func (*Subtract) Run(ctx node.ExecutionContext) error {
	return runBinary(ctx, func(a, b float64) (float64, error) { return a - b, nil })
}

// Multiply multiplies two numbers.
type Multiply struct{}

// NewMultiply creates the logic object.
func NewMultiply() *Multiply { return &Multiply{} }

// Describe returns the node metadata.
func (*Multiply) Describe() node.NodeDescriptor {
	return binaryDescriptor("multiply", "Multiply", "Multiplies two numbers")
}

// Run computes a * b.
func (*Multiply) Run(ctx node.ExecutionContext) error {
	return runBinary(ctx, func(a, b float64) (float64, error) { return a * b, nil })
}

// Divide divides a by b. Unlike the pure operators it participates in the
// execution graph: division by zero fails the node, and the error handling
// pins let boards recover from it.
type Divide struct{}

// NewDivide creates the logic object.
func NewDivide() *Divide { return &Divide{} }

// Describe returns the node metadata.
func (*Divide) Describe() node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          "divide",
		Name:        "Divide",
		Description: "Divides the first number by the second",
		Category:    "Math",
		Icon:        "/flow/icons/sigma.svg",
		Inputs: []types.Pin{
			{Name: "exec", FriendlyName: "Execute", Description: "Execution input", Type: types.TypeExecution},
			*numberPin("a", "A", "Dividend"),
			*numberPin("b", "B", "Divisor"),
		},
		Outputs: []types.Pin{
			{Name: "exec_out", FriendlyName: "Done", Description: "Fires after a successful division", Type: types.TypeExecution},
			{Name: "result", FriendlyName: "Result", Description: "The quotient", Type: types.TypeGeneric, Shape: types.ShapeScalar},
			{Name: node.PinAutoHandleError, FriendlyName: "On Error", Description: "Fires when the division fails", Type: types.TypeExecution},
			{Name: node.PinAutoHandleErrorString, FriendlyName: "Error", Description: "The failure message", Type: types.TypeString, Shape: types.ShapeScalar},
		},
	}
}

// Run computes a / b, failing on a zero divisor.
func (*Divide) Run(ctx node.ExecutionContext) error {
	a, b, bothInt, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	if b == 0 {
		return fmt.Errorf("division by zero")
	}
	result := a / b
	if bothInt && result == float64(int64(result)) {
		if err := ctx.SetPinValue("result", types.Int(int64(result))); err != nil {
			return err
		}
	} else if err := ctx.SetPinValue("result", types.Float(result)); err != nil {
		return err
	}
	return ctx.ActivateExecPin("exec_out")
}

func binaryDescriptor(id, name, description string) node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    "Math",
		Icon:        "/flow/icons/sigma.svg",
		Inputs: []types.Pin{
			*numberPin("a", "A", "First operand"),
			*numberPin("b", "B", "Second operand"),
		},
		Outputs: []types.Pin{
			{Name: "result", FriendlyName: "Result", Description: "The computed value", Type: types.TypeGeneric, Shape: types.ShapeScalar},
		},
	}
}

func numberPin(name, friendly, description string) *types.Pin {
	pin := &types.Pin{
		Name:         name,
		FriendlyName: friendly,
		Description:  description,
		Type:         types.TypeGeneric,
		Shape:        types.ShapeScalar,
	}
	return pin.SetDefault(types.Int(0))
}

func binaryOperands(ctx node.ExecutionContext) (a, b float64, bothInt bool, err error) {
	av, err := ctx.EvaluatePin("a")
	if err != nil {
		return 0, 0, false, err
	}
	bv, err := ctx.EvaluatePin("b")
	if err != nil {
		return 0, 0, false, err
	}
	a, err = av.AsFloat()
	if err != nil {
		return 0, 0, false, err
	}
	b, err = bv.AsFloat()
	if err != nil {
		return 0, 0, false, err
	}
	return a, b, av.Kind == types.KindInt && bv.Kind == types.KindInt, nil
}

func runBinary(ctx node.ExecutionContext, op func(a, b float64) (float64, error)) error {
	a, b, bothInt, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	result, err := op(a, b)
	if err != nil {
		return err
	}
	if bothInt && result == float64(int64(result)) {
		return ctx.SetPinValue("result", types.Int(int64(result)))
	}
	return ctx.SetPinValue("result", types.Float(result))
}
