// Package rpc provides the communication layer of sKV. Clients and servers
// exchange text commands over encrypted, newline delimited frames.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the text protocol, configuration structures, errors and logging.
//
//   - codec: The AES-CBC codec, the escape framing and the growable input
//     buffer that splits a byte stream into frames.
//
//   - transport: The handler contracts and the single threaded reactor (base)
//     with pluggable socket connectors (TCP, Unix sockets). The reactor runs
//     the session key handshake before any application message is exchanged.
//
//   - client: The command pipeline and RPCMap, a client that sends commands
//     without waiting for previous responses and correlates responses by order.
//
//   - server: The RPC server and the adapter translating commands into store
//     operations.
package rpc
