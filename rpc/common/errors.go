package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Sentinel errors
// --------------------------------------------------------------------------

var (
	// ErrTimeout is returned to callers whose bounded wait elapsed. The connection stays usable.
	ErrTimeout = errors.New("operation timed out")
	// ErrAlreadyConnected is returned by Connect if the transport is already running
	ErrAlreadyConnected = errors.New("transport already connected")
	// ErrNotConnected is returned if an operation needs a running transport
	ErrNotConnected = errors.New("transport not connected")
	// ErrClosed is returned if the transport or queue was closed
	ErrClosed = errors.New("transport closed")
	// ErrHandshakeFailed is returned if the session key negotiation did not complete
	ErrHandshakeFailed = errors.New("failed to establish secure connection")
	// ErrPeerClosed is returned if the remote side closed the stream
	ErrPeerClosed = errors.New("connection closed by peer")
	// ErrUnexpectedResponse is returned if a response arrives without a pending request
	ErrUnexpectedResponse = errors.New("response without pending request")
	// ErrUnsupportedCommand is returned if the server does not know a command
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// --------------------------------------------------------------------------
// Structured error types
// --------------------------------------------------------------------------

// ConnectionError is fatal for the connection it occurred on (I/O, decode and handshake errors).
type ConnectionError struct {
	Op   string // "accept", "connect", "read", "write", "decode", "handshake", ...
	Addr string // remote (or local for listen) address, may be empty
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError reports a violation of the text protocol (unknown command, wrong arity, ...).
// It is surfaced as an application level error and never retried.
type ProtocolError struct {
	Command string
	Msg     string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error (%q): %s", e.Command, e.Msg)
}

// --------------------------------------------------------------------------
// Constructors & classifiers
// --------------------------------------------------------------------------

// NewConnectionError wraps err as a connection-fatal error. A nil err stays nil.
func NewConnectionError(op, addr string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConnectionError{Op: op, Addr: addr, Err: err}
}

// IsTimeout reports whether err is a caller side timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsConnectionFatal reports whether err terminated (or must terminate) a connection
func IsConnectionFatal(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsProtocolViolation reports whether err is a protocol level error
func IsProtocolViolation(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
