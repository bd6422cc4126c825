package server

import (
	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/transport"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for translating protocol requests into store operations
type IRPCServerAdapter interface {
	// Handle handles a request and returns the response text.
	// It takes the request text and a store as parameters.
	// Protocol violations are answered with an error response, never with a Go error.
	Handle(req string, store store.IStore) (resp string)
}

// IRPCServer is a running sKV server
type IRPCServer interface {
	// Start binds the endpoint and starts serving in the background
	Start() error
	// Serve starts the server and blocks until it is closed or fails
	Serve() error
	// Close stops the server and closes all connections
	Close() error
	// Addr returns the address the server listens on (empty if not started)
	Addr() string
	// Connections returns a snapshot of the open client connections
	Connections() []transport.ConnectionInfo
}
