package tcp

import (
	"testing"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestResolve(t *testing.T) {
	c := NewConnector()
	assert.Equal(t, "tcp", c.GetName())

	domain, sa, err := c.Resolve("127.0.0.1:8080")
	require.NoError(t, err)
	assert.Equal(t, unix.AF_INET, domain)
	assert.Equal(t, "127.0.0.1:8080", transport.FormatSockaddr(sa))

	domain, sa, err = c.Resolve(":0")
	require.NoError(t, err)
	assert.Equal(t, unix.AF_INET, domain)
	assert.Equal(t, "0.0.0.0:0", transport.FormatSockaddr(sa))

	domain, sa, err = c.Resolve("[::1]:9000")
	require.NoError(t, err)
	assert.Equal(t, unix.AF_INET6, domain)
	assert.Equal(t, "[::1]:9000", transport.FormatSockaddr(sa))

	_, _, err = c.Resolve("no-port")
	assert.Error(t, err)
}

func TestUpgradeSocket(t *testing.T) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	conf := common.TransportConfig{
		SocketConf: common.SocketConf{WriteBufferSize: 64 * 1024, ReadBufferSize: 64 * 1024},
		TCPConf:    common.TCPConf{TCPNoDelay: true, TCPKeepAliveSec: 30, TCPLingerSec: 1},
	}
	require.NoError(t, NewConnector().UpgradeSocket(fd, conf))

	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY)
	require.NoError(t, err)
	assert.NotZero(t, v)

	v, err = unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
	require.NoError(t, err)
	assert.NotZero(t, v)
}
