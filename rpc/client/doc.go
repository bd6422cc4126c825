// Package client implements the client side of sKV: a pipeline of commands running on a
// client reactor and RPCMap, the map client built on it.
//
// The package focuses on:
//   - Pipelining: commands are sent as soon as the reactor can write, without waiting for
//     the response of the previous command
//   - Correlation by order: the server answers in request order, so every response
//     resolves the oldest command that has not been answered yet
//   - Futures: every operation returns a *Command that can be awaited with a timeout
//
// Key Components:
//
//   - Command: the request text plus a single-assignment result. Get(timeout) and
//     Wait(ctx) block the caller, the reactor goroutine never blocks. The server's
//     "null" is reported as ok == false, "ERR ..." responses as *common.ProtocolError.
//
//   - Pipeline: the reactor handler. Enqueue pushes onto a lock-free MPSC queue and wakes
//     the reactor, OnWritable drains the queue into the per connection FIFO of awaiting
//     commands, OnMessage pops it. AwaitFlush is a barrier on the number of commands
//     without response.
//
//   - RPCMap: put/get/rm/size/clear on top of a Pipeline and a client reactor.
//
// Usage Example:
//
//	bootstrap, _ := codec.ParseAESCodec(os.Getenv("SKV_BOOTSTRAP_KEY"))
//	m, _ := client.NewRPCMap(common.ClientConfig{
//		Transport:     common.TransportConfig{Endpoint: "localhost:8080"},
//		TimeoutSecond: 5,
//	}, tcp.NewConnector(), bootstrap)
//	defer m.Close()
//
//	m.Put("k1", "v1")
//	value, ok, err := m.Get("k1").Get(m.Timeout())
//
// Error Handling:
//
//	A timeout only fails the waiting caller, the connection stays usable and a late
//	response still resolves the command. Connection errors close the client reactor;
//	commands without response are then only resolved by their caller side timeout.
//	There is no reconnect.
package client
