package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Transport carries newline-delimited JSON-RPC frames to and from a
// tool-provider process. Any framing satisfying "one typed request, one
// typed response or error per request" can be substituted.
type Transport interface {
	// Send writes a single frame
	Send(ctx context.Context, data []byte) error
	// Receive blocks until the next frame arrives, the context is done,
	// or the channel is closed
	Receive(ctx context.Context) ([]byte, error)
	// Close releases the channel and, for process-backed transports,
	// terminates the process. Idempotent.
	Close() error
}

// terminateGrace is how long a closing transport waits for the child
// process to exit on its own after stdin is closed before killing it.
const terminateGrace = 5 * time.Second

// StdioTransport talks to a subprocess over its stdin/stdout.
// The process is owned exclusively by this transport; Close guarantees
// it terminates.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	exited chan struct{}

	incoming chan []byte
	done     chan struct{}

	sendMu sync.Mutex

	errMu   sync.Mutex
	readErr error

	closeOnce sync.Once
	closeErr  error
}

// NewStdioTransport launches the process described by params and wires
// its stdin/stdout for JSON-RPC framing. The child's stderr passes
// through to this process's stderr so stdout stays clean for frames.
func NewStdioTransport(params ServerParameters) (*StdioTransport, error) {
	cmd := exec.Command(params.Command, params.Args...)
	cmd.Env = os.Environ()
	for k, v := range params.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", params.Command, err)
	}

	t := &StdioTransport{
		cmd:      cmd,
		stdin:    stdin,
		exited:   make(chan struct{}),
		incoming: make(chan []byte, 16),
		done:     make(chan struct{}),
	}

	go func() {
		cmd.Wait()
		close(t.exited)
	}()
	go t.readLoop(stdout)

	return t, nil
}

// NewIOTransport wires a transport over an arbitrary reader/writer pair.
// Used to talk to in-process fakes in tests.
func NewIOTransport(r io.Reader, w io.Writer) *StdioTransport {
	t := &StdioTransport{
		stdin:    asWriteCloser(w),
		incoming: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
	go t.readLoop(r)
	return t
}

func (t *StdioTransport) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	// Set a reasonable max size for each line
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame := make([]byte, len(line))
		copy(frame, line)

		select {
		case t.incoming <- frame:
		case <-t.done:
			return
		}
	}

	t.errMu.Lock()
	if err := scanner.Err(); err != nil {
		t.readErr = err
	} else {
		t.readErr = io.EOF
	}
	t.errMu.Unlock()
	close(t.incoming)
}

// Send writes one frame followed by a newline
func (t *StdioTransport) Send(ctx context.Context, data []byte) error {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	select {
	case <-t.done:
		return fmt.Errorf("transport closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	frame := make([]byte, 0, len(data)+1)
	frame = append(frame, data...)
	frame = append(frame, '\n')
	_, err := t.stdin.Write(frame)
	return err
}

// Receive returns the next frame, ctx.Err on cancellation, or the
// terminal read error once the peer's output ends
func (t *StdioTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, fmt.Errorf("transport closed")
	case data, ok := <-t.incoming:
		if !ok {
			t.errMu.Lock()
			defer t.errMu.Unlock()
			return nil, t.readErr
		}
		return data, nil
	}
}

// Close closes stdin to signal a graceful shutdown, waits briefly for the
// process to exit, and kills it if it does not. Safe to call repeatedly.
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.closeErr = t.stdin.Close()

		if t.cmd == nil {
			return
		}
		select {
		case <-t.exited:
		case <-time.After(terminateGrace):
			t.cmd.Process.Kill()
			<-t.exited
		}
	})
	return t.closeErr
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func asWriteCloser(w io.Writer) io.WriteCloser {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}
	return nopWriteCloser{w}
}
