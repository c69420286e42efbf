package jsonrpc

import "encoding/json"

// Response represents a JSON-RPC response object.
// Result is kept raw so callers can decode into their own types.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      ID              `json:"id"`
}

// NewResponse creates a new Response object
func NewResponse(id interface{}, result json.RawMessage, err *Error) Response {
	respID, _ := NewID(id)

	return Response{
		JSONRPC: Version,
		ID:      respID,
		Result:  result,
		Error:   err,
	}
}

// UnmarshalResult decodes the raw result into out
func (r Response) UnmarshalResult(out interface{}) error {
	return json.Unmarshal(r.Result, out)
}
