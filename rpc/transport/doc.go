// Package transport defines the contracts between the sKV reactor and the code running
// on top of it.
//
// A reactor (see package base) owns sockets, buffers and the handshake. It knows nothing
// about the application protocol: decrypted messages are handed to an IHandler and the
// next outgoing messages are requested from it whenever a connection becomes writable.
//
// Key Components:
//
//   - IHandler / IConnection: the application callback contract. S is the per connection
//     application state, created lazily by IHandler.NewState.
//
//   - IConnectListener / IDisconnectListener: optional callbacks detected by type assertion.
//
//   - IConnector: transport specific socket operations (address resolution and socket
//     options). Implemented by the tcp and unix packages.
//
//   - Phase / Role: the handshake state of a connection and the side a reactor plays.
package transport
