package jsonrpc

import (
	"fmt"
)

// ErrorCode identifies a JSON-RPC 2.0 error condition.
type ErrorCode int

// Error codes defined by https://www.jsonrpc.org/specification.
// The -32000 to -32099 band is reserved for implementation-defined
// server errors; ErrServer is its canonical value.
const (
	ErrParse          ErrorCode = -32700 // invalid JSON received
	ErrInvalidRequest ErrorCode = -32600 // not a valid Request object
	ErrMethodNotFound ErrorCode = -32601 // method does not exist
	ErrInvalidParams  ErrorCode = -32602 // invalid method parameters
	ErrInternal       ErrorCode = -32603 // internal JSON-RPC error
	ErrServer         ErrorCode = -32000
)

var errorMessages = map[ErrorCode]string{
	ErrParse:          "Parse error",
	ErrInvalidRequest: "Invalid Request",
	ErrMethodNotFound: "Method not found",
	ErrInvalidParams:  "Invalid params",
	ErrInternal:       "Internal error",
	ErrServer:         "Server error",
}

// Error is the error object carried in a failed Response.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// NewError builds an Error with the standard message for code. Codes in
// the server-error band fall back to the generic server-error message.
func NewError(code ErrorCode, data interface{}) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		if code >= -32099 && code <= -32000 {
			msg = "Server error"
		} else {
			msg = "Unknown error"
		}
	}

	return &Error{
		Code:    code,
		Message: msg,
		Data:    data,
	}
}
