// Package cmd implements the command-line interface of sKV. It provides a
// hierarchical command structure with operations for running the server and
// interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (put, get, rm, size, clear) and a
//     pipelined performance test
//   - serve: Command for starting and configuring the sKV server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Server and clients must share the bootstrap key, e.g.:
//
//	export SKV_BOOTSTRAP_KEY=$(skv keygen)
//	skv serve --endpoint localhost:8080 &
//	skv kv put k1 v1
//
// See skv -help for a list of all commands.
package cmd
