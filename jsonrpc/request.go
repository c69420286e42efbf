package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version
const Version = "2.0"

// Request represents a JSON-RPC request object.
// A request without an ID is a notification and expects no response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      *ID             `json:"id,omitempty"`
}

// NewRequest creates a new Request object with the given id
func NewRequest(method string, params interface{}, id interface{}) (Request, error) {
	reqID, err := NewID(id)
	if err != nil {
		return Request{}, err
	}

	raw, err := marshalParams(params)
	if err != nil {
		return Request{}, err
	}

	return Request{
		JSONRPC: Version,
		Method:  method,
		Params:  raw,
		ID:      &reqID,
	}, nil
}

// NewNotification creates a Request with no ID
func NewNotification(method string, params interface{}) (Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return Request{}, err
	}

	return Request{
		JSONRPC: Version,
		Method:  method,
		Params:  raw,
	}, nil
}

// IsNotification reports whether the request expects no response
func (r Request) IsNotification() bool {
	return r.ID == nil
}

func marshalParams(params interface{}) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling params: %w", err)
	}
	return raw, nil
}
