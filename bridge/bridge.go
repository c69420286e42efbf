package bridge

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/newsdesk-ai/newsdesk/mcp"
)

// Defaults match the upstream tool servers' expectations: npx-based
// servers can take a while to warm up on first launch.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultCallTimeout    = 60 * time.Second
)

// Option configures a Bridge
type Option func(*Bridge)

// WithConnectTimeout bounds how long construction waits for the handshake
func WithConnectTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.connectTimeout = d
	}
}

// WithCallTimeout bounds each Invoke
func WithCallTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.callTimeout = d
	}
}

// WithLogger sets the logger for bridge and protocol diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithTransport overrides the process-spawning transport. Used by tests
// to wire the bridge to an in-process fake server.
func WithTransport(t mcp.Transport) Option {
	return func(b *Bridge) {
		b.transport = t
	}
}

type invokeRequest struct {
	name string
	args map[string]interface{}
	resp chan invokeResult
}

type invokeResult struct {
	result *mcp.CallToolResult
	err    error
}

// Bridge runs an mcp.Client on one dedicated background goroutine so
// synchronous callers can invoke tools without adopting asynchronous
// control flow. Calls are single-flighted: the background goroutine
// processes one invocation at a time, in arrival order.
type Bridge struct {
	logger         *slog.Logger
	connectTimeout time.Duration
	callTimeout    time.Duration
	transport      mcp.Transport

	client *mcp.Client
	tools  []mcp.Tool

	requests chan *invokeRequest
	closing  chan struct{}
	done     chan struct{}

	shutdownOnce sync.Once
}

// New launches the tool-provider process described by params, starts the
// background goroutine, and blocks until the handshake and tool discovery
// complete or the connect timeout elapses. On failure the goroutine and
// the process are torn down before the *InitError is returned.
func New(params mcp.ServerParameters, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		connectTimeout: DefaultConnectTimeout,
		callTimeout:    DefaultCallTimeout,
		requests:       make(chan *invokeRequest),
		closing:        make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	transport := b.transport
	if transport == nil {
		t, err := mcp.NewStdioTransport(params)
		if err != nil {
			return nil, &InitError{Err: err}
		}
		transport = t
	}
	b.client = mcp.NewClient(transport, mcp.WithLogger(b.logger))

	ready := make(chan error, 1)
	go b.run(ready)

	if err := <-ready; err != nil {
		return nil, &InitError{Err: err}
	}
	return b, nil
}

// Tools returns the capability list discovered at construction, in the
// server's declaration order.
func (b *Bridge) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, len(b.tools))
	copy(tools, b.tools)
	return tools
}

// Invoke calls the named tool and blocks until its result or error is
// delivered back from the background goroutine. Concurrent callers are
// serialized; at most one call is in flight at a time. After Shutdown it
// returns ErrClosed immediately.
func (b *Bridge) Invoke(name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req := &invokeRequest{name: name, args: args, resp: make(chan invokeResult, 1)}

	select {
	case b.requests <- req:
	case <-b.done:
		return nil, ErrClosed
	}

	select {
	case res := <-req.resp:
		return res.result, res.err
	case <-b.done:
		// The loop may have delivered just before exiting
		select {
		case res := <-req.resp:
			return res.result, res.err
		default:
			return nil, ErrClosed
		}
	}
}

// Shutdown closes the client, stops the background goroutine, and waits
// for it to exit. Idempotent; safe to call even if Invoke was never
// called. Callers blocked in Invoke complete or observe a Disconnected
// error rather than hanging.
func (b *Bridge) Shutdown() {
	b.shutdownOnce.Do(func() {
		close(b.closing)
		// Closing the client unblocks any in-flight call immediately
		b.client.Close()
		<-b.done
		b.logger.Info("bridge shut down")
	})
}

// run owns the client for the bridge's entire lifetime. No other
// goroutine touches the session directly.
func (b *Bridge) run(ready chan<- error) {
	defer close(b.done)

	ctx, cancel := context.WithTimeout(context.Background(), b.connectTimeout)
	err := b.client.Connect(ctx)
	if err == nil {
		b.tools, err = b.client.ListTools(ctx)
	}
	cancel()

	if err != nil {
		b.client.Close()
		ready <- err
		return
	}
	ready <- nil

	for {
		select {
		case <-b.closing:
			b.client.Close()
			b.drain()
			return
		case req := <-b.requests:
			callCtx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
			result, err := b.client.CallTool(callCtx, req.name, req.args)
			cancel()
			req.resp <- invokeResult{result: result, err: err}
		}
	}
}

// drain fails queued requests that arrived before shutdown won the race
func (b *Bridge) drain() {
	for {
		select {
		case req := <-b.requests:
			req.resp <- invokeResult{err: &mcp.InvocationError{
				Kind:   mcp.InvocationDisconnected,
				Method: "tools/call",
			}}
		default:
			return
		}
	}
}
