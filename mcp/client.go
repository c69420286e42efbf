package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/newsdesk-ai/newsdesk/jsonrpc"
)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the logger used for protocol diagnostics
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClientInfo sets the implementation info sent during the handshake
func WithClientInfo(info Implementation) ClientOption {
	return func(c *Client) {
		c.info = info
	}
}

// Client speaks the MCP handshake/discovery/invocation protocol to one
// tool-provider process over a Transport. It is safe for concurrent use;
// responses are matched to requests by JSON-RPC id, and a response
// arriving after its waiter gave up is discarded.
type Client struct {
	transport Transport
	logger    *slog.Logger
	info      Implementation

	nextID  atomic.Int64
	mu      sync.Mutex
	pending map[int64]chan jsonrpc.Response

	// disconnected is closed when the read loop terminates, either
	// because the process exited or because Close was called
	disconnected chan struct{}
	discOnce     sync.Once

	closeOnce sync.Once
	closeErr  error

	serverInfo Implementation
}

// NewClient creates a client over the given transport. Connect must be
// called before ListTools or CallTool.
func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport:    transport,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		info:         Implementation{Name: "newsdesk", Version: "dev"},
		pending:      make(map[int64]chan jsonrpc.Response),
		disconnected: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect performs the protocol handshake within the context deadline:
// an initialize request followed by an initialized notification. On
// failure it returns a *ConnectError and the caller should Close.
func (c *Client) Connect(ctx context.Context) error {
	go c.readLoop()

	params := InitializeParams{
		ProtocolVersion: Version,
		Capabilities:    ClientCapabilities{},
		ClientInfo:      c.info,
	}

	resp, err := c.call(ctx, "initialize", params)
	if err != nil {
		return connectError(err)
	}

	var result InitializeResult
	if err := resp.UnmarshalResult(&result); err != nil {
		return &ConnectError{Reason: ConnectProtocolMismatch, Err: err}
	}
	if result.ProtocolVersion == "" {
		return &ConnectError{Reason: ConnectProtocolMismatch, Err: errors.New("server did not report a protocol version")}
	}
	if result.ProtocolVersion != Version {
		c.logger.Debug("server negotiated a different protocol version",
			"client", Version, "server", result.ProtocolVersion)
	}
	c.serverInfo = result.ServerInfo

	if err := c.notify(ctx, "notifications/initialized", nil); err != nil {
		return connectError(err)
	}

	c.logger.Info("connected to tool provider",
		"server", result.ServerInfo.Name, "version", result.ServerInfo.Version)
	return nil
}

// ServerInfo returns the implementation info reported during the handshake
func (c *Client) ServerInfo() Implementation {
	return c.serverInfo
}

// ListTools queries the process for its capability list. Ordering follows
// the server's declaration order; callers must not depend on alphabetic order.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	resp, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var result ToolsListResult
	if err := resp.UnmarshalResult(&result); err != nil {
		return nil, &InvocationError{Kind: InvocationRejected, Method: "tools/list", Err: err}
	}
	return result.Tools, nil
}

// CallTool sends one invocation and awaits the single matching response.
// A CallToolResult with IsError set is a tool-level failure reported by
// the server, not a protocol failure.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error) {
	resp, err := c.call(ctx, "tools/call", CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}

	var result CallToolResult
	if err := resp.UnmarshalResult(&result); err != nil {
		return nil, &InvocationError{Kind: InvocationRejected, Method: "tools/call", Err: err}
	}
	return &result, nil
}

// Close releases the transport and terminates the process. Idempotent;
// callers blocked in CallTool observe a Disconnected error.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.transport.Close()
		<-c.disconnected
	})
	return c.closeErr
}

// call issues one request and blocks for its matching response
func (c *Client) call(ctx context.Context, method string, params interface{}) (jsonrpc.Response, error) {
	select {
	case <-c.disconnected:
		return jsonrpc.Response{}, &InvocationError{Kind: InvocationDisconnected, Method: method}
	default:
	}

	id := c.nextID.Add(1)
	req, err := jsonrpc.NewRequest(method, params, id)
	if err != nil {
		return jsonrpc.Response{}, &InvocationError{Kind: InvocationRejected, Method: method, Err: err}
	}

	ch := make(chan jsonrpc.Response, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		c.forget(id)
		return jsonrpc.Response{}, &InvocationError{Kind: InvocationRejected, Method: method, Err: err}
	}

	if err := c.transport.Send(ctx, data); err != nil {
		c.forget(id)
		return jsonrpc.Response{}, &InvocationError{Kind: InvocationDisconnected, Method: method, Err: err}
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp, &InvocationError{Kind: InvocationRejected, Method: method, Rejection: resp.Error}
		}
		return resp, nil
	case <-ctx.Done():
		// Abandon the pending call; the read loop discards the late response
		c.forget(id)
		return jsonrpc.Response{}, &InvocationError{Kind: InvocationTimeout, Method: method, Err: ctx.Err()}
	case <-c.disconnected:
		return jsonrpc.Response{}, &InvocationError{Kind: InvocationDisconnected, Method: method}
	}
}

// notify sends a request without an id and expects no response
func (c *Client) notify(ctx context.Context, method string, params interface{}) error {
	req, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return &InvocationError{Kind: InvocationRejected, Method: method, Err: err}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return &InvocationError{Kind: InvocationRejected, Method: method, Err: err}
	}
	if err := c.transport.Send(ctx, data); err != nil {
		return &InvocationError{Kind: InvocationDisconnected, Method: method, Err: err}
	}
	return nil
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop matches incoming responses to pending calls until the
// transport reports a terminal error
func (c *Client) readLoop() {
	for {
		data, err := c.transport.Receive(context.Background())
		if err != nil {
			break
		}

		// Server-initiated requests and notifications carry a method;
		// this client does not service them
		var env struct {
			Method string `json:"method"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debug("dropping unparseable frame", "error", err)
			continue
		}
		if env.Method != "" {
			c.logger.Debug("ignoring server-initiated message", "method", env.Method)
			continue
		}

		var resp jsonrpc.Response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Debug("dropping malformed response", "error", err)
			continue
		}

		id, ok := resp.ID.Value().(int64)
		if !ok {
			c.logger.Debug("dropping response without usable id")
			continue
		}

		c.mu.Lock()
		ch, found := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()

		if !found {
			// Late response to an abandoned call
			c.logger.Debug("discarding response for abandoned call", "id", id)
			continue
		}
		ch <- resp
	}

	c.discOnce.Do(func() { close(c.disconnected) })
}

// connectError translates a protocol-level failure into a handshake failure
func connectError(err error) error {
	var inv *InvocationError
	if errors.As(err, &inv) {
		switch inv.Kind {
		case InvocationTimeout:
			return &ConnectError{Reason: ConnectTimedOut, Err: err}
		case InvocationDisconnected:
			return &ConnectError{Reason: ConnectProcessExited, Err: err}
		default:
			return &ConnectError{Reason: ConnectProtocolMismatch, Err: err}
		}
	}
	return &ConnectError{Reason: ConnectProcessExited, Err: err}
}
