package tcp

import (
	"fmt"
	"net"
	"os"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"golang.org/x/sys/unix"
)

// connector implements the IConnector interface for TCP sockets
type connector struct{}

// NewConnector creates the tcp connector used by server and client reactors
func NewConnector() transport.IConnector {
	return &connector{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "tcp"
}

func (c *connector) Resolve(endpoint string) (int, unix.Sockaddr, error) {
	addr, err := net.ResolveTCPAddr("tcp", endpoint)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to resolve %q: %w", endpoint, err)
	}

	if ip4 := addr.IP.To4(); ip4 != nil || addr.IP == nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		if ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return unix.AF_INET, sa, nil
	}

	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if iface, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(iface.Index)
		}
	}
	return unix.AF_INET6, sa, nil
}

func (c *connector) PrepareListen(string) error {
	return nil
}

// UpgradeSocket applies the TCPConf and SocketConf options to a socket
func (c *connector) UpgradeSocket(fd int, config common.TransportConfig) error {
	// Disable Nagle's algorithm (TCPNoDelay) if configured
	noDelay := 0
	if config.TCPConf.TCPNoDelay {
		noDelay = 1
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, noDelay); err != nil {
		return os.NewSyscallError("setsockopt TCP_NODELAY", err)
	}

	if err := transport.ApplySocketConf(fd, config.SocketConf); err != nil {
		return err
	}

	// Enable TCP keep-alive if configured
	if config.TCPConf.TCPKeepAliveSec > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
			return os.NewSyscallError("setsockopt SO_KEEPALIVE", err)
		}
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, config.TCPConf.TCPKeepAliveSec); err != nil {
			return os.NewSyscallError("setsockopt TCP_KEEPINTVL", err)
		}
	}

	// Set TCP linger option if configured
	if config.TCPConf.TCPLingerSec > 0 {
		linger := &unix.Linger{Onoff: 1, Linger: int32(config.TCPConf.TCPLingerSec)}
		if err := unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, linger); err != nil {
			return os.NewSyscallError("setsockopt SO_LINGER", err)
		}
	}

	return nil
}
