package mcp

import (
	"fmt"

	"github.com/newsdesk-ai/newsdesk/jsonrpc"
)

// ConnectFailure classifies why establishing a session failed
type ConnectFailure int

const (
	// ConnectTimedOut means the handshake did not complete within the deadline
	ConnectTimedOut ConnectFailure = iota + 1
	// ConnectProcessExited means the tool-provider process exited before
	// or during the handshake
	ConnectProcessExited
	// ConnectProtocolMismatch means the server answered the handshake with
	// an incompatible protocol version
	ConnectProtocolMismatch
)

func (f ConnectFailure) String() string {
	switch f {
	case ConnectTimedOut:
		return "timed out"
	case ConnectProcessExited:
		return "process exited"
	case ConnectProtocolMismatch:
		return "protocol mismatch"
	default:
		return "unknown"
	}
}

// ConnectError reports a failed connection attempt
type ConnectError struct {
	Reason ConnectFailure
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mcp: connect failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("mcp: connect failed (%s)", e.Reason)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// InvocationFailure classifies why a single tool call failed
type InvocationFailure int

const (
	// InvocationTimeout means no response arrived within the call deadline.
	// The pending call is abandoned; a late response is discarded.
	InvocationTimeout InvocationFailure = iota + 1
	// InvocationRejected means the server answered with a JSON-RPC error
	InvocationRejected
	// InvocationDisconnected means the channel dropped before a response arrived
	InvocationDisconnected
)

func (f InvocationFailure) String() string {
	switch f {
	case InvocationTimeout:
		return "timeout"
	case InvocationRejected:
		return "rejected"
	case InvocationDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// InvocationError reports a failed tool invocation. A single invocation
// failure never poisons the session; subsequent calls may succeed.
type InvocationError struct {
	Kind InvocationFailure
	// Method is the JSON-RPC method that failed
	Method string
	// Rejection carries the server's error object when Kind is InvocationRejected
	Rejection *jsonrpc.Error
	Err       error
}

func (e *InvocationError) Error() string {
	switch {
	case e.Rejection != nil:
		return fmt.Sprintf("mcp: %s %s: %v", e.Method, e.Kind, e.Rejection)
	case e.Err != nil:
		return fmt.Sprintf("mcp: %s %s: %v", e.Method, e.Kind, e.Err)
	default:
		return fmt.Sprintf("mcp: %s %s", e.Method, e.Kind)
	}
}

func (e *InvocationError) Unwrap() error {
	if e.Rejection != nil {
		return e.Rejection
	}
	return e.Err
}
