// Package bridge lets synchronous callers invoke tools on an asynchronous
// MCP client. Each Bridge owns one background goroutine that drives the
// client, one tool-provider process, and a deterministic shutdown point.
package bridge

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Invoke once Shutdown has begun. It indicates a
// caller bug: no call may be issued after teardown starts.
var ErrClosed = errors.New("bridge: closed")

// InitError reports that bridge construction failed. The bridge is
// unusable; construction must be retried from scratch. It wraps the
// underlying *mcp.ConnectError or process launch error.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("bridge: initialization failed: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// SchemaViolation classifies a local argument validation failure
type SchemaViolation int

const (
	// MissingField means a required field was not supplied
	MissingField SchemaViolation = iota + 1
	// UnexpectedField means a field outside the declared schema was supplied
	UnexpectedField
	// InvalidValue means a supplied value failed schema validation
	InvalidValue
)

func (v SchemaViolation) String() string {
	switch v {
	case MissingField:
		return "missing required field"
	case UnexpectedField:
		return "unexpected field"
	case InvalidValue:
		return "invalid value"
	default:
		return "schema violation"
	}
}

// SchemaError reports arguments rejected before reaching the tool-provider
// process. Retrying the same call unmodified will fail again.
type SchemaError struct {
	Tool   string
	Field  string
	Reason SchemaViolation
	Err    error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("bridge: %s: %s %q", e.Tool, e.Reason, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("bridge: %s: %s: %v", e.Tool, e.Reason, e.Err)
	default:
		return fmt.Sprintf("bridge: %s: %s", e.Tool, e.Reason)
	}
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
