// Package logic holds the control-flow node kinds.
package logic

import (
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Branch routes execution to one of two exec outputs based on a boolean
// condition. The untaken side stays untouched: its pins are never
// evaluated.
type Branch struct{}

// NewBranch creates the logic object.
func NewBranch() *Branch { return &Branch{} }

// Describe returns the node metadata.
func (*Branch) Describe() node.NodeDescriptor {
	conditionPin := types.Pin{
		Name:         "condition",
		FriendlyName: "Condition",
		Description:  "Which side to take",
		Type:         types.TypeBoolean,
		Shape:        types.ShapeScalar,
	}
	conditionPin.SetDefault(types.Bool(false))

	return node.NodeDescriptor{
		ID:          "branch",
		Name:        "Branch",
		Description: "Routes execution based on a condition",
		Category:    "Logic",
		Icon:        "/flow/icons/split.svg",
		Inputs: []types.Pin{
			{Name: "exec", FriendlyName: "Execute", Description: "Execution input", Type: types.TypeExecution},
			conditionPin,
		},
		Outputs: []types.Pin{
			{Name: "then", FriendlyName: "True", Description: "Taken when the condition holds", Type: types.TypeExecution},
			{Name: "else", FriendlyName: "False", Description: "Taken otherwise", Type: types.TypeExecution},
		},
	}
}

// Run evaluates the condition and activates exactly one side.
func (*Branch) Run(ctx node.ExecutionContext) error {
	v, err := ctx.EvaluatePin("condition")
	if err != nil {
		return err
	}
	cond, err := v.AsBool()
	if err != nil {
		return err
	}
	if cond {
		return ctx.ActivateExecPin("then")
	}
	return ctx.ActivateExecPin("else")
}
