package common

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	timeout := fmt.Errorf("get k1: %w", ErrTimeout)
	require.True(t, IsTimeout(timeout))
	require.False(t, IsConnectionFatal(timeout))
	require.False(t, IsProtocolViolation(timeout))

	conn := NewConnectionError("read", "127.0.0.1:1", io.ErrUnexpectedEOF)
	require.True(t, IsConnectionFatal(conn))
	require.ErrorIs(t, conn, io.ErrUnexpectedEOF)
	require.Equal(t, "read 127.0.0.1:1: unexpected EOF", conn.Error())

	// wrapping twice keeps the innermost operation
	again := NewConnectionError("handshake", "", conn)
	require.Same(t, conn, again)

	proto := &ProtocolError{Command: "foo", Msg: "unsupported command"}
	require.True(t, IsProtocolViolation(fmt.Errorf("wrapped: %w", proto)))
	require.False(t, IsTimeout(proto))

	require.NoError(t, NewConnectionError("read", "", nil))
}
