// Package base implements the reactor shared by all sKV transports: a single goroutine
// that multiplexes every socket of one transport instance, runs the session key handshake
// and moves encrypted, delimited frames between sockets and an application handler.
// Protocol specific socket operations (address resolution, socket options) are supplied
// by an IConnector from the tcp or unix package.
//
// Key Components:
//
//   - Reactor: owns the event loop. NewServerReactor accepts connections on an endpoint,
//     NewClientReactor opens exactly one connection. Connect starts the loop, Close stops
//     it and waits for it to exit. A reactor can be connected again after it stopped.
//
//   - channelContext: the state of one socket (input FrameBuffer, output queue, session
//     codec, handshake phase and the lazily created application state).
//
//   - Handshake: the client sends a fresh AES key and iv encrypted with the bootstrap codec,
//     the server answers "OK" encrypted with the received session codec. Afterwards all
//     frames are encrypted with the session codec.
//
//   - poller: epoll plus an eventfd to interrupt a wait (linux only, other platforms
//     fail on Connect).
//
// Event Loop:
//
//	Each iteration waits for readiness with a bounded timeout (TransportConfig.PollTimeout)
//	so that a Close is observed even without traffic. Read interest is always registered,
//	write interest only while output is pending, after messages were delivered to the
//	handler and after Wake. Handlers that produce messages outside of OnMessage (the client
//	pipeline) call Wake after queueing them.
//
// Error Handling:
//
//	Any error while processing one connection closes that connection. A server keeps
//	serving its other connections, a client reactor stops and reports the error via Err.
//	Requests waiting for a response are not failed by the reactor.
//
// Thread Safety:
//
//	Connect, Close, Wake, Done, Err, Addr and Connections are safe for concurrent use.
//	Handler callbacks run on the reactor goroutine and must not call Close.
//	All metrics are exported with VictoriaMetrics/metrics (skv_transport_*{role="..."}).
package base
