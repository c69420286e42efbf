package bridge

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/newsdesk-ai/newsdesk/mcp"
)

// ToolAdapter presents one discovered tool as a plain callable with a
// declared schema. Consumers need no notion of the underlying protocol.
type ToolAdapter struct {
	tool     mcp.Tool
	bridge   *Bridge
	resolved *jsonschema.Resolved
}

// NewToolAdapter wraps one discovered tool. The tool's input schema is
// resolved once so every Call can validate cheaply.
func NewToolAdapter(tool mcp.Tool, b *Bridge) (*ToolAdapter, error) {
	a := &ToolAdapter{tool: tool, bridge: b}
	if tool.InputSchema != nil {
		resolved, err := tool.InputSchema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolving schema for tool %q: %w", tool.Name, err)
		}
		a.resolved = resolved
	}
	return a, nil
}

// Adapters wraps every tool the bridge discovered, keyed by tool name.
// This mapping is the sole surface the orchestration layer consumes.
func Adapters(b *Bridge) (map[string]*ToolAdapter, error) {
	adapters := make(map[string]*ToolAdapter)
	for _, tool := range b.Tools() {
		adapter, err := NewToolAdapter(tool, b)
		if err != nil {
			return nil, err
		}
		adapters[tool.Name] = adapter
	}
	return adapters, nil
}

// Name returns the tool name
func (a *ToolAdapter) Name() string {
	return a.tool.Name
}

// Description returns the tool's self-description
func (a *ToolAdapter) Description() string {
	return a.tool.Description
}

// Schema returns the tool's declared input schema
func (a *ToolAdapter) Schema() *jsonschema.Schema {
	return a.tool.InputSchema
}

// Call validates args against the declared schema and delegates to the
// bridge. Validation failures are reported as *SchemaError without
// crossing into the bridge, so no round trip is wasted on a malformed
// call. A tool-level failure reported by the server comes back as an
// error carrying the server's message.
func (a *ToolAdapter) Call(args map[string]interface{}) (string, error) {
	if err := a.validate(args); err != nil {
		return "", err
	}

	result, err := a.bridge.Invoke(a.tool.Name, args)
	if err != nil {
		return "", err
	}
	if result.IsError {
		return "", fmt.Errorf("tool %s: %s", a.tool.Name, result.Text())
	}
	return result.Text(), nil
}

func (a *ToolAdapter) validate(args map[string]interface{}) error {
	schema := a.tool.InputSchema
	if schema == nil {
		return nil
	}

	for _, field := range schema.Required {
		if _, ok := args[field]; !ok {
			return &SchemaError{Tool: a.tool.Name, Field: field, Reason: MissingField}
		}
	}

	if len(schema.Properties) > 0 {
		for field := range args {
			if _, ok := schema.Properties[field]; !ok {
				return &SchemaError{Tool: a.tool.Name, Field: field, Reason: UnexpectedField}
			}
		}
	}

	if a.resolved != nil {
		if err := a.resolved.Validate(args); err != nil {
			return &SchemaError{Tool: a.tool.Name, Reason: InvalidValue, Err: err}
		}
	}
	return nil
}
