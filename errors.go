package nats

import (
	"errors"
	"fmt"

	"github.com/go-stack/stack"
)

// Sentinel errors returned directly by operations.
var (
	ErrConnectionClosed = errors.New("nats: connection closed")
	ErrConnectionLost   = errors.New("nats: connection lost")
	ErrDisposed         = errors.New("nats: connection disposed")
	ErrBadSubscription  = errors.New("nats: invalid subscription")
	ErrSlowConsumer     = errors.New("nats: slow consumer, messages dropped")
	ErrTimeout          = errors.New("nats: timeout")
	ErrStaleConnection  = errors.New("nats: stale connection, max pings outstanding")
	ErrNoServers        = errors.New("nats: no servers available for connection")
	ErrInvalidAuth      = errors.New("nats: at most one of user/pass, token or nkey seed may be set")
)

// ConnectError reports that every candidate URL failed during an initial
// connect() or a reconnect round.
type ConnectError struct {
	URLs   []string
	Causes []error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("nats: failed to connect to any of %d server(s)", len(e.URLs))
}

func (e *ConnectError) Unwrap() []error { return e.Causes }

// HandshakeError wraps a failure during the INFO/CONNECT/PONG exchange.
type HandshakeError struct {
	Cause error
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("nats: handshake failed: %v", e.Cause) }
func (e *HandshakeError) Unwrap() error { return e.Cause }

// ProtocolError reports a malformed frame from the server.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "nats: protocol error: " + e.Msg }

// AuthError reports a server-side -ERR authorization violation. Fatal for
// the current socket; the reconnect supervisor will retry, which is the
// caller's concern if credentials never become valid.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return "nats: authorization error: " + e.Msg }

// ServerError reports a non-authorization -ERR the server sent during the
// handshake window (before the first PONG). Such errors arriving later are
// only logged.
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string { return "nats: " + e.Msg }

// WriteFailed reports a socket write error; every command whose bytes were
// part of the failing flush observes this.
type WriteFailed struct {
	Cause error
}

func (e *WriteFailed) Error() string { return fmt.Sprintf("nats: write failed: %v", e.Cause) }
func (e *WriteFailed) Unwrap() error { return e.Cause }

// recoverInto returns a deferred recovery function that turns a panic from
// a user-supplied callback into a logged error carrying the caller's stack,
// rather than letting it unwind into the reader/writer loop.
func recoverInto(logger Logger, context string) func() {
	return func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = nopLoggerInstance
			}
			logger.Errorf("nats: recovered panic in %s: %v\n%s", context, r, stack.Trace().TrimRuntime())
		}
	}
}
