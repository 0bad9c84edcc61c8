// Package utility holds the entry and logging node kinds.
package utility

import (
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// Entry is a board entry point: it carries a single exec output fired
// whenever the node is triggered by an external event.
type Entry struct{}

// NewEntry creates the logic object.
func NewEntry() *Entry { return &Entry{} }

// Describe returns the node metadata.
func (*Entry) Describe() node.NodeDescriptor {
	return node.NodeDescriptor{
		ID:          "entry",
		Name:        "Entry",
		Description: "Starts an execution chain",
		Category:    "Events",
		Icon:        "/flow/icons/play.svg",
		Outputs: []types.Pin{
			{Name: "exec_out", FriendlyName: "Start", Description: "Fires on trigger", Type: types.TypeExecution},
		},
	}
}

// Run activates the exec output.
func (*Entry) Run(ctx node.ExecutionContext) error {
	return ctx.ActivateExecPin("exec_out")
}

// Log writes its message input to the execution trace and the operator
// log, then passes execution on.
type Log struct{}

// NewLog creates the logic object.
func NewLog() *Log { return &Log{} }

// Describe returns the node metadata.
func (*Log) Describe() node.NodeDescriptor {
	messagePin := types.Pin{
		Name:         "message",
		FriendlyName: "Message",
		Description:  "The value to log",
		Type:         types.TypeGeneric,
		Shape:        types.ShapeScalar,
	}
	messagePin.SetDefault(types.String(""))

	return node.NodeDescriptor{
		ID:          "log",
		Name:        "Log",
		Description: "Logs a message",
		Category:    "Utilities",
		Icon:        "/flow/icons/terminal.svg",
		Inputs: []types.Pin{
			{Name: "exec", FriendlyName: "Execute", Description: "Execution input", Type: types.TypeExecution},
			messagePin,
		},
		Outputs: []types.Pin{
			{Name: "exec_out", FriendlyName: "Done", Description: "Fires after logging", Type: types.TypeExecution},
			{Name: "logged", FriendlyName: "Logged", Description: "The rendered message", Type: types.TypeString, Shape: types.ShapeScalar},
		},
	}
}

// Run renders the message, records it and passes execution on.
func (*Log) Run(ctx node.ExecutionContext) error {
	v, err := ctx.EvaluatePin("message")
	if err != nil {
		return err
	}
	msg, err := v.AsString()
	if err != nil {
		return err
	}
	ctx.Log(msg, trace.LevelInfo)
	ctx.Logger().Info(msg, map[string]interface{}{"nodeId": ctx.NodeID()})
	if err := ctx.SetPinValue("logged", types.String(msg)); err != nil {
		return err
	}
	return ctx.ActivateExecPin("exec_out")
}
