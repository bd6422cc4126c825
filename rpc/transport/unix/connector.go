package unix

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	sys "golang.org/x/sys/unix"
)

// connector implements the IConnector interface for Unix sockets
type connector struct{}

// NewConnector creates the unix socket connector used by server and client reactors
func NewConnector() transport.IConnector {
	return &connector{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "unix"
}

func (c *connector) Resolve(endpoint string) (int, sys.Sockaddr, error) {
	if endpoint == "" {
		return 0, nil, fmt.Errorf("empty socket path")
	}
	return sys.AF_UNIX, &sys.SockaddrUnix{Name: endpoint}, nil
}

// PrepareListen removes a socket file left behind by a previous server
func (c *connector) PrepareListen(endpoint string) error {
	if err := os.RemoveAll(endpoint); err != nil {
		return fmt.Errorf("failed to remove existing socket: %v", err)
	}
	return nil
}

func (c *connector) UpgradeSocket(fd int, config common.TransportConfig) error {
	return transport.ApplySocketConf(fd, config.SocketConf)
}
