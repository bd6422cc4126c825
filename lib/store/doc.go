// Package store defines the key-value mapping behind the sKV text protocol.
//
// Key Components:
//
//   - IStore Interface: put, get, remove, size and clear on string keys and values.
//     The rpc server translates protocol commands one to one into calls of this
//     interface, so any implementation can be served without changes to the transport.
//
// Implementations:
//
//	- Local Store (lstore): a concurrent in-memory map. Data is not persisted between
//	  process restarts. Available in the "github.com/ValentinKolb/sKV/lib/store/lstore"
//	  package.
package store
