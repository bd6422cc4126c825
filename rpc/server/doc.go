// Package server implements the sKV server: a reactor in the server role whose handler
// answers the text protocol of package common against a store.IStore.
//
// Key Components:
//
//   - IRPCServerAdapter / iStoreServerAdapterImpl: parses one request ("put k v", "get k",
//     "rm k", "size", "clear") and runs it against the store. Values that do not exist are
//     answered with "null", protocol violations with "ERR <reason>". The connection stays
//     open after a protocol violation.
//
//   - rpcServer: the reactor handler. The state of each connection is the queue of
//     responses that were produced by OnMessage and not yet handed out by OnWritable, so
//     responses leave in request order.
//
// Thread Safety:
//
//	All handler callbacks run on the reactor goroutine. The store is shared by all
//	connections and must be safe for concurrent use by other users of the store.
package server
