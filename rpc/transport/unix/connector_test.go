package unix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sys "golang.org/x/sys/unix"
)

func TestResolve(t *testing.T) {
	c := NewConnector()
	assert.Equal(t, "unix", c.GetName())

	domain, sa, err := c.Resolve("/tmp/skv.sock")
	require.NoError(t, err)
	assert.Equal(t, sys.AF_UNIX, domain)
	assert.Equal(t, "/tmp/skv.sock", sa.(*sys.SockaddrUnix).Name)

	_, _, err = c.Resolve("")
	assert.Error(t, err)
}

func TestPrepareListenRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skv.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	require.NoError(t, NewConnector().PrepareListen(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// missing files are fine
	assert.NoError(t, NewConnector().PrepareListen(path))
}
