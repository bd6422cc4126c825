package transport

import (
	"fmt"
	"net"
	"strconv"

	"github.com/ValentinKolb/sKV/rpc/common"
	"golang.org/x/sys/unix"
)

// --------------------------------------------------------------------------
// Roles & handshake phases
// --------------------------------------------------------------------------

// Role is the side a reactor plays on its connections
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// Phase is the handshake state of one connection
type Phase int32

const (
	// PhaseCreated: no key material was exchanged yet
	PhaseCreated Phase = iota
	// PhaseClientKeySent: the client sent its session key and iv and waits for the acknowledgement
	PhaseClientKeySent
	// PhaseServerKeyReceived: the server installed the session codec and still has to acknowledge it
	PhaseServerKeyReceived
	// PhaseConnected: all traffic uses the session codec
	PhaseConnected
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseClientKeySent:
		return "client-key-sent"
	case PhaseServerKeyReceived:
		return "server-key-received"
	case PhaseConnected:
		return "connected"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// --------------------------------------------------------------------------
// Handler contract
// --------------------------------------------------------------------------

// IConnection is the view of a connection handed to handlers. Its methods must only be
// called from within a handler callback, i.e. on the reactor goroutine.
type IConnection[S any] interface {
	// ID returns an identifier that is unique among the open connections of one reactor
	ID() int
	// RemoteAddr returns the address of the peer
	RemoteAddr() string
	// Phase returns the handshake phase of the connection
	Phase() Phase
	// State returns the application state of the connection, it is created on first use
	State() S
}

// IHandler is implemented by the application running on top of a reactor.
// S is the type of the per connection application state.
type IHandler[S any] interface {
	// NewState creates the application state of a new connection
	NewState() S
	// OnMessage is called for every decrypted inbound message in arrival order.
	// A returned error is fatal for the connection.
	OnMessage(conn IConnection[S], msg []byte) error
	// OnWritable is called whenever the connection can be written to and returns the
	// next outgoing messages (possibly none). A returned error is fatal for the connection.
	OnWritable(conn IConnection[S]) ([][]byte, error)
}

// IConnectListener can optionally be implemented by an IHandler to be notified once the
// handshake of a connection completed
type IConnectListener[S any] interface {
	OnConnected(conn IConnection[S])
}

// IDisconnectListener can optionally be implemented by an IHandler to be notified after
// a connection was closed. err is nil if the reactor itself was closed.
type IDisconnectListener[S any] interface {
	OnDisconnected(conn IConnection[S], err error)
}

// ConnectionInfo is a snapshot of one open connection
type ConnectionInfo struct {
	ID     int
	Remote string
	Phase  Phase
}

// --------------------------------------------------------------------------
// Connector
// --------------------------------------------------------------------------

// IConnector defines the transport specific (tcp, unix, ...) socket operations of a reactor
type IConnector interface {
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// Resolve translates an endpoint into a socket domain and address
	Resolve(endpoint string) (domain int, sa unix.Sockaddr, err error)

	// PrepareListen is called before the listening socket for endpoint is bound
	PrepareListen(endpoint string) error

	// UpgradeSocket applies protocol-specific settings to an accepted or connecting socket
	UpgradeSocket(fd int, config common.TransportConfig) error
}

// FormatSockaddr returns a printable representation of a socket address
func FormatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrUnix:
		if a.Name == "" {
			return "@unix"
		}
		return a.Name
	case nil:
		return ""
	default:
		return fmt.Sprintf("%T", sa)
	}
}
