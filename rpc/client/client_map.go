package client

import (
	"context"
	"strings"
	"time"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/ValentinKolb/sKV/rpc/transport/base"
)

// RPCMap is a client of a sKV server. All operations are pipelined over a single
// connection and return a *Command whose response can be awaited.
type RPCMap struct {
	config   common.ClientConfig
	pipeline *Pipeline
	reactor  *base.Reactor[*awaitQueue]
}

// NewRPCMap connects to config.Transport.Endpoint. The handshake runs in the background,
// commands enqueued before it completed are sent afterwards. Use WaitConnected to wait
// for it explicitly.
//
// Usage:
//
//	m, err := client.NewRPCMap(config, tcp.NewConnector(), bootstrap)
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	m.Put("k1", "v1")
//	value, ok, err := m.Get("k1").Get(m.Timeout())
func NewRPCMap(
	config common.ClientConfig,
	connector transport.IConnector,
	bootstrap codec.ICodec,
) (*RPCMap, error) {
	m := &RPCMap{config: config}
	m.pipeline = NewPipeline(m.wake)
	m.reactor = base.NewClientReactor[*awaitQueue](connector, config.Transport, bootstrap, m.pipeline)

	if err := m.reactor.Connect(); err != nil {
		return nil, err
	}
	Logger.Debugf("Created RPC map client for %s using %s transport", config.Transport.Endpoint, connector.GetName())
	return m, nil
}

func (m *RPCMap) wake() {
	if err := m.reactor.Wake(); err != nil {
		Logger.Debugf("Failed to wake reactor: %v", err)
	}
}

// Put stores value under key, the response is the previous value
func (m *RPCMap) Put(key, value string) *Command {
	if err := validate(common.CmdPut, key, value); err != nil {
		return failedCommand(common.CmdPut, err)
	}
	return m.pipeline.Enqueue(common.NewPutCommand(key, value))
}

// Get fetches the value stored under key
func (m *RPCMap) Get(key string) *Command {
	if err := validate(common.CmdGet, key); err != nil {
		return failedCommand(common.CmdGet, err)
	}
	return m.pipeline.Enqueue(common.NewGetCommand(key))
}

// Remove deletes key, the response is the removed value
func (m *RPCMap) Remove(key string) *Command {
	if err := validate(common.CmdRemove, key); err != nil {
		return failedCommand(common.CmdRemove, err)
	}
	return m.pipeline.Enqueue(common.NewRemoveCommand(key))
}

// Size queries the number of stored keys
func (m *RPCMap) Size() *Command {
	return m.pipeline.Enqueue(common.NewSizeCommand())
}

// Clear removes all keys, the response is the number of removed keys
func (m *RPCMap) Clear() *Command {
	return m.pipeline.Enqueue(common.NewClearCommand())
}

// Send enqueues a raw request text
func (m *RPCMap) Send(request string) *Command {
	return m.pipeline.Enqueue(request)
}

// AwaitFlush blocks until all enqueued commands were answered or timeout elapsed
func (m *RPCMap) AwaitFlush(timeout time.Duration) error {
	return m.pipeline.AwaitFlush(timeout)
}

// WaitConnected blocks until the handshake completed. It fails if the connection was
// closed before or ctx is done.
func (m *RPCMap) WaitConnected(ctx context.Context) error {
	select {
	case <-m.pipeline.ready:
		return nil
	case <-m.pipeline.disconnected:
		return m.pipeline.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Timeout returns the configured per request timeout
func (m *RPCMap) Timeout() time.Duration {
	return m.config.Timeout()
}

// Done returns a channel that is closed once the connection is gone
func (m *RPCMap) Done() <-chan struct{} {
	return m.pipeline.disconnected
}

// Err returns the error that closed the connection
func (m *RPCMap) Err() error {
	return m.reactor.Err()
}

// Close closes the connection. Commands without response are not resolved.
func (m *RPCMap) Close() error {
	m.pipeline.Close()
	return m.reactor.Close()
}

// validate rejects arguments the text protocol cannot carry
func validate(cmd string, args ...string) error {
	for _, arg := range args {
		if strings.Contains(arg, common.CommandSeparator) {
			return &common.ProtocolError{Command: cmd, Msg: "arguments must not contain spaces"}
		}
	}
	return nil
}
