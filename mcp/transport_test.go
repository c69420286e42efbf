package mcp

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStdioTransportStartFailure(t *testing.T) {
	_, err := NewStdioTransport(ServerParameters{Command: "definitely-not-a-real-command-54321"})
	require.Error(t, err)
}

func TestIOTransportSendFrames(t *testing.T) {
	pr, pw := io.Pipe()
	transport := NewIOTransport(strings.NewReader(""), pw)
	defer transport.Close()

	go func() {
		transport.Send(context.Background(), []byte(`{"a":1}`))
		transport.Send(context.Background(), []byte(`{"b":2}`))
	}()

	scanner := bufio.NewScanner(pr)
	require.True(t, scanner.Scan())
	assert.Equal(t, `{"a":1}`, scanner.Text())
	require.True(t, scanner.Scan())
	assert.Equal(t, `{"b":2}`, scanner.Text())
}

func TestIOTransportReceiveFrames(t *testing.T) {
	pr, pw := io.Pipe()
	transport := NewIOTransport(pr, io.Discard)
	defer transport.Close()

	go func() {
		io.WriteString(pw, `{"a":1}`+"\n")
		io.WriteString(pw, "\n") // blank lines are skipped
		io.WriteString(pw, `{"b":2}`+"\n")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frame, err := transport.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(frame))

	frame, err = transport.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(frame))
}

func TestIOTransportReceiveAfterPeerClose(t *testing.T) {
	pr, pw := io.Pipe()
	transport := NewIOTransport(pr, io.Discard)
	defer transport.Close()

	pw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := transport.Receive(ctx)
	require.Error(t, err)
}

func TestIOTransportCloseIsIdempotent(t *testing.T) {
	transport := NewIOTransport(strings.NewReader(""), io.Discard)

	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close())
}

func TestIOTransportSendAfterClose(t *testing.T) {
	transport := NewIOTransport(strings.NewReader(""), io.Discard)
	require.NoError(t, transport.Close())

	err := transport.Send(context.Background(), []byte(`{}`))
	require.Error(t, err)
}

func TestIOTransportReceiveHonorsContext(t *testing.T) {
	pr, _ := io.Pipe()
	transport := NewIOTransport(pr, io.Discard)
	defer transport.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := transport.Receive(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
