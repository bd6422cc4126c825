// Package tcp implements the TCP connector of the sKV reactor. It resolves "host:port"
// endpoints (IPv4 and IPv6) into socket addresses and applies the TCPConf and SocketConf
// options (TCP_NODELAY, keep-alive, linger, kernel buffer sizes) to every accepted or
// connecting socket.
//
// See the base package for the reactor itself.
package tcp
