// Package flowerr defines the structured errors surfaced by the execution
// engine.
package flowerr

import (
	"errors"
	"fmt"
)

// Kind categorizes an engine failure. Routing through the error handler
// chain is attempted for DependencyFailed and ExecutionFailed only; the
// rest surface directly to the caller.
type Kind string

const (
	KindDependencyFailed Kind = "dependency_failed"
	KindExecutionFailed  Kind = "execution_failed"
	KindPinNotReady      Kind = "pin_not_ready"
	KindCycleDetected    Kind = "cycle_detected"
	KindValidationFailed Kind = "validation_failed"
	KindCancelled        Kind = "cancelled"
)

// Error is a structured engine error carrying the failing node (when known)
// and the failure kind.
type Error struct {
	Kind    Kind
	NodeID  string
	PinName string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.NodeID != "" && e.PinName != "":
		return fmt.Sprintf("[%s] %s (node: %s, pin: %s)", e.Kind, e.Message, e.NodeID, e.PinName)
	case e.NodeID != "":
		return fmt.Sprintf("[%s] %s (node: %s)", e.Kind, e.Message, e.NodeID)
	case e.PinName != "":
		return fmt.Sprintf("[%s] %s (pin: %s)", e.Kind, e.Message, e.PinName)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// DependencyFailed reports a pure parent failing during dependency
// resolution for the given node.
func DependencyFailed(nodeID string) *Error {
	return &Error{Kind: KindDependencyFailed, NodeID: nodeID, Message: "failed to run dependencies"}
}

// ExecutionFailed reports the node's own logic failing.
func ExecutionFailed(nodeID string, cause error) *Error {
	msg := "node logic failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindExecutionFailed, NodeID: nodeID, Message: msg, Cause: cause}
}

// PinNotReady reports an input consulted before it held a value or default.
func PinNotReady(nodeID, pinName string) *Error {
	return &Error{Kind: KindPinNotReady, NodeID: nodeID, PinName: pinName, Message: "pin has no value and no default"}
}

// CycleDetected reports a cycle found during a dependency or exec walk.
func CycleDetected(msg string) *Error {
	return &Error{Kind: KindCycleDetected, Message: msg}
}

// ValidationFailed reports a schema-enforced pin write rejecting a value.
func ValidationFailed(pinName string, cause error) *Error {
	msg := "schema validation failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindValidationFailed, PinName: pinName, Message: msg, Cause: cause}
}

// Cancelled reports cooperative cancellation. Never routed to the error
// handler chain.
func Cancelled(nodeID string, cause error) *Error {
	return &Error{Kind: KindCancelled, NodeID: nodeID, Message: "execution cancelled", Cause: cause}
}

// KindOf extracts the kind from an error chain, or "" if the chain holds no
// engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether the error chain carries an engine error of the given
// kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// NodeOf extracts the failing node id from an error chain.
func NodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.NodeID
	}
	return ""
}
