// Package util provides small concurrency primitives shared by the transport and
// client packages.
//
// The package contains:
//   - lockfreempsc: A lock-free Multi-Producer Single-Consumer (MPSC) queue. Any number of
//     goroutines may Push while exactly one goroutine (the reactor) drains it with TryPop.
//     The consumer never blocks and never takes a lock, which keeps the reactor loop
//     independent of how many callers are enqueuing.
package util
