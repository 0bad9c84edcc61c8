// Package mocks provides lightweight test doubles for node execution.
package mocks

import (
	"context"

	"github.com/GitBrincie212/flow-like/internal/flowerr"
	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/logger"
	"github.com/GitBrincie212/flow-like/pkg/types"
)

// MockExecutionContext implements node.ExecutionContext over plain maps so
// node logic can run without a board or engine.
type MockExecutionContext struct {
	nodeID    string
	inputs    map[string]types.Value
	outputs   map[string]types.Value
	activated []string
	entries   []*trace.LogMessage
	log       logger.Logger
	ctx       context.Context
}

// NewMockExecutionContext creates a context for the given node id.
func NewMockExecutionContext(nodeID string) *MockExecutionContext {
	return &MockExecutionContext{
		nodeID:  nodeID,
		inputs:  make(map[string]types.Value),
		outputs: make(map[string]types.Value),
		log:     logger.Nop{},
		ctx:     context.Background(),
	}
}

// SetInput seeds an input pin value.
func (m *MockExecutionContext) SetInput(name string, v types.Value) {
	m.inputs[name] = v
}

// Output returns a recorded output value.
func (m *MockExecutionContext) Output(name string) (types.Value, bool) {
	v, ok := m.outputs[name]
	return v, ok
}

// Activated returns the exec outputs activated during the run, in order.
func (m *MockExecutionContext) Activated() []string {
	return append([]string(nil), m.activated...)
}

// Entries returns the trace entries logged during the run.
func (m *MockExecutionContext) Entries() []*trace.LogMessage {
	return append([]*trace.LogMessage(nil), m.entries...)
}

// Context implements node.ExecutionContext.
func (m *MockExecutionContext) Context() context.Context { return m.ctx }

// EvaluatePin implements node.ExecutionContext.
func (m *MockExecutionContext) EvaluatePin(name string) (types.Value, error) {
	v, ok := m.inputs[name]
	if !ok {
		return types.Null(), flowerr.PinNotReady(m.nodeID, name)
	}
	return v, nil
}

// SetPinValue implements node.ExecutionContext.
func (m *MockExecutionContext) SetPinValue(name string, v types.Value) error {
	m.outputs[name] = v
	return nil
}

// ActivateExecPin implements node.ExecutionContext.
func (m *MockExecutionContext) ActivateExecPin(name string) error {
	m.outputs[name] = types.Bool(true)
	m.activated = append(m.activated, name)
	return nil
}

// DeactivateExecPin implements node.ExecutionContext.
func (m *MockExecutionContext) DeactivateExecPin(name string) error {
	m.outputs[name] = types.Bool(false)
	return nil
}

// Log implements node.ExecutionContext.
func (m *MockExecutionContext) Log(msg string, level trace.LogLevel) {
	entry := trace.NewLogMessage(msg, level)
	entry.NodeID = m.nodeID
	m.entries = append(m.entries, entry)
}

// Logger implements node.ExecutionContext.
func (m *MockExecutionContext) Logger() logger.Logger { return m.log }

// NodeID implements node.ExecutionContext.
func (m *MockExecutionContext) NodeID() string { return m.nodeID }

// RunID implements node.ExecutionContext.
func (m *MockExecutionContext) RunID() string { return "test-run" }
