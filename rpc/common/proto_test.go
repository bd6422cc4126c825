package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandBuilders(t *testing.T) {
	require.Equal(t, "put k1 v1", NewPutCommand("k1", "v1"))
	require.Equal(t, "get k1", NewGetCommand("k1"))
	require.Equal(t, "rm k1", NewRemoveCommand("k1"))
	require.Equal(t, "size", NewSizeCommand())
	require.Equal(t, "clear", NewClearCommand())

	cmd, args := ParseCommand(NewPutCommand("a\nb\\", "c"))
	require.Equal(t, CmdPut, cmd)
	require.Equal(t, []string{"a\nb\\", "c"}, args)

	cmd, args = ParseCommand("size")
	require.Equal(t, CmdSize, cmd)
	require.Empty(t, args)
}

func TestParseResponse(t *testing.T) {
	v, ok, err := ParseResponse("get k1", "v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", v)

	v, ok, err = ParseResponse("get k1", NullValue)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)

	_, _, err = ParseResponse("foo", NewErrorResponse("unsupported command"))
	require.True(t, IsProtocolViolation(err))
	require.Contains(t, err.Error(), "unsupported command")
}
