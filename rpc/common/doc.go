// Package common provides core data structures and utilities shared across
// the sKV transport, server and client packages.
//
// The package focuses on:
//   - Configuration structures for client and server components
//   - The text protocol spoken on top of the encrypted transport
//   - Error types that separate caller timeouts, connection-fatal errors and protocol violations
//   - Custom logging implementation built on Dragonboat's logger package
//
// Key Components:
//
//   - ServerConfig / ClientConfig: Configuration of the reactor (endpoint, poll timeout,
//     buffer increment, socket options), the metrics endpoint and logging.
//
//   - Protocol helpers: builders for the request texts (put, get, rm, size, clear), the
//     NullValue marker and the ERR prefix used for protocol violations.
//
//   - ConnectionError / ProtocolError / ErrTimeout: the three error classes of the
//     transport. Connection errors close the affected connection, protocol errors are
//     reported to the caller, timeouts leave the connection untouched.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
