package base

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sys/unix"
)

var Logger = logger.GetLogger("transport/rpc")

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// -----------------------------------------------------------
// Reactor
// -----------------------------------------------------------

// Reactor runs all socket I/O of one transport instance on a single goroutine.
// S is the type of the per connection application state of its handler.
type Reactor[S any] struct {
	role      transport.Role
	connector transport.IConnector
	config    common.TransportConfig
	bootstrap codec.ICodec
	handler   transport.IHandler[S]
	metrics   *transportMetrics

	// connections mirrors the open connections for callers outside the reactor goroutine
	connections *xsync.MapOf[int, transport.ConnectionInfo]

	mu      sync.Mutex
	current *eventLoop[S] // nil if not connected
	lastErr error         // error that stopped the last event loop
}

// eventLoop is one run of a reactor, from Connect until the loop exits
type eventLoop[S any] struct {
	r        *Reactor[S]
	poller   *poller
	conns    map[int]*channelContext[S]
	listenFd int
	addr     string
	err      error

	stop   atomic.Bool
	closed bool // poller released, guarded by r.mu
	done   chan struct{}
}

// -----------------------------------------------------------
// Reactor Factory Methods
// -----------------------------------------------------------

// NewServerReactor creates a reactor accepting connections on config.Endpoint
func NewServerReactor[S any](connector transport.IConnector, config common.TransportConfig, bootstrap codec.ICodec, handler transport.IHandler[S]) *Reactor[S] {
	return newReactor(transport.RoleServer, connector, config, bootstrap, handler)
}

// NewClientReactor creates a reactor holding a single connection to config.Endpoint
func NewClientReactor[S any](connector transport.IConnector, config common.TransportConfig, bootstrap codec.ICodec, handler transport.IHandler[S]) *Reactor[S] {
	return newReactor(transport.RoleClient, connector, config, bootstrap, handler)
}

func newReactor[S any](role transport.Role, connector transport.IConnector, config common.TransportConfig, bootstrap codec.ICodec, handler transport.IHandler[S]) *Reactor[S] {
	return &Reactor[S]{
		role:        role,
		connector:   connector,
		config:      config,
		bootstrap:   bootstrap,
		handler:     handler,
		metrics:     newTransportMetrics(role),
		connections: xsync.NewMapOf[int, transport.ConnectionInfo](),
	}
}

// -----------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------

// Connect binds (server) or connects (client) the socket and starts the event loop.
// It fails with common.ErrAlreadyConnected if the reactor is running.
func (r *Reactor[S]) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return common.ErrAlreadyConnected
	}

	domain, sa, err := r.connector.Resolve(r.config.Endpoint)
	if err != nil {
		return common.NewConnectionError("resolve", r.config.Endpoint, err)
	}

	p, err := newPoller()
	if err != nil {
		return fmt.Errorf("failed to create poller: %w", err)
	}

	l := &eventLoop[S]{
		r:        r,
		poller:   p,
		conns:    make(map[int]*channelContext[S]),
		listenFd: -1,
		done:     make(chan struct{}),
	}

	if r.role == transport.RoleServer {
		err = l.listen(domain, sa)
	} else {
		err = l.dial(domain, sa)
	}
	if err != nil {
		_ = p.close()
		return err
	}

	r.current = l
	r.lastErr = nil
	go l.run()
	return nil
}

// Close stops the event loop, closes all connections and waits until the loop exited.
// Closing a reactor that is not running is a no-op.
func (r *Reactor[S]) Close() error {
	r.mu.Lock()
	l := r.current
	if l == nil {
		r.mu.Unlock()
		return nil
	}
	l.stop.Store(true)
	if !l.closed {
		_ = l.poller.wake()
	}
	r.mu.Unlock()

	<-l.done
	return nil
}

// Wake interrupts the poll of the event loop and registers write interest on every
// established connection. Handlers with new outgoing messages call it from any goroutine.
func (r *Reactor[S]) Wake() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.current
	if l == nil || l.closed {
		return common.ErrNotConnected
	}
	return l.poller.wake()
}

// Done returns a channel that is closed once the current event loop exited
func (r *Reactor[S]) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return closedChan
	}
	return r.current.done
}

// Err returns the error that stopped the last event loop, nil if it was closed regularly
func (r *Reactor[S]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Addr returns the listen address (server) or the remote address (client)
func (r *Reactor[S]) Addr() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return ""
	}
	return r.current.addr
}

// Role returns the side this reactor plays
func (r *Reactor[S]) Role() transport.Role {
	return r.role
}

// Connections returns a snapshot of the open connections
func (r *Reactor[S]) Connections() []transport.ConnectionInfo {
	result := make([]transport.ConnectionInfo, 0, r.connections.Size())
	r.connections.Range(func(_ int, info transport.ConnectionInfo) bool {
		result = append(result, info)
		return true
	})
	return result
}

// --------------------------------------------------------------------------
// Event loop
// --------------------------------------------------------------------------

func (l *eventLoop[S]) listen(domain int, sa unix.Sockaddr) error {
	r := l.r
	if err := r.connector.PrepareListen(r.config.Endpoint); err != nil {
		return common.NewConnectionError("listen", r.config.Endpoint, err)
	}
	fd, err := listenSocket(domain, sa)
	if err != nil {
		return common.NewConnectionError("listen", r.config.Endpoint, err)
	}
	if err := l.poller.add(fd, evRead); err != nil {
		_ = closeSocket(fd)
		return common.NewConnectionError("listen", r.config.Endpoint, err)
	}

	l.listenFd = fd
	l.addr = localAddr(fd)
	Logger.Infof("Listening on %s using %s transport", l.addr, r.connector.GetName())
	return nil
}

func (l *eventLoop[S]) dial(domain int, sa unix.Sockaddr) error {
	r := l.r
	fd, connected, err := dialSocket(domain, sa)
	if err != nil {
		return common.NewConnectionError("connect", r.config.Endpoint, err)
	}
	if err := r.connector.UpgradeSocket(fd, r.config); err != nil {
		Logger.Warningf("Failed to apply socket options to %s: %v", r.config.Endpoint, err)
	}

	ctx := newChannelContext(fd, transport.FormatSockaddr(sa), r.config.Increment(), r.handler.NewState)
	ctx.connecting = !connected
	ctx.writeArmed = true
	if err := l.poller.add(fd, evRead|evWrite); err != nil {
		_ = closeSocket(fd)
		return common.NewConnectionError("connect", r.config.Endpoint, err)
	}

	l.register(ctx)
	l.addr = ctx.remote
	Logger.Debugf("Connecting to %s using %s transport", ctx.remote, r.connector.GetName())
	return nil
}

func (l *eventLoop[S]) run() {
	defer l.shutdown()

	timeout := l.r.config.PollTimeout()
	for !l.stop.Load() {
		woken, err := l.poller.wait(timeout, l.dispatch)
		if err != nil {
			Logger.Errorf("Poll failed: %v", err)
			l.err = err
			return
		}
		if woken {
			l.armEstablished()
		}
	}
}

func (l *eventLoop[S]) shutdown() {
	r := l.r

	r.mu.Lock()
	l.closed = true
	r.mu.Unlock()

	for _, ctx := range l.conns {
		l.closeConn(ctx, nil)
	}
	if l.listenFd >= 0 {
		_ = closeSocket(l.listenFd)
	}
	_ = l.poller.close()

	r.mu.Lock()
	if r.current == l {
		r.current = nil
	}
	r.lastErr = l.err
	r.mu.Unlock()

	Logger.Infof("%s transport on %s stopped", r.role, l.addr)
	close(l.done)
}

func (l *eventLoop[S]) dispatch(fd int, ev uint32) {
	if fd == l.listenFd {
		l.acceptAll()
		return
	}
	ctx, ok := l.conns[fd]
	if !ok {
		return
	}
	if err := l.process(ctx, ev); err != nil {
		l.fail(ctx, err)
	}
}

func (l *eventLoop[S]) acceptAll() {
	r := l.r
	for {
		fd, remote, err := acceptSocket(l.listenFd)
		if errors.Is(err, errWouldBlock) {
			return
		}
		if err != nil {
			Logger.Warningf("Failed to accept connection: %v", err)
			return
		}

		if err := r.connector.UpgradeSocket(fd, r.config); err != nil {
			Logger.Warningf("Failed to apply socket options to %s: %v", remote, err)
		}
		if remote == "" {
			remote = peerAddr(fd)
		}

		ctx := newChannelContext(fd, remote, r.config.Increment(), r.handler.NewState)
		if err := l.poller.add(fd, evRead); err != nil {
			Logger.Warningf("Failed to register connection %s: %v", remote, err)
			_ = closeSocket(fd)
			continue
		}
		l.register(ctx)
		Logger.Debugf("Accepted connection from %s", remote)
	}
}

func (l *eventLoop[S]) process(ctx *channelContext[S], ev uint32) error {
	if ctx.connecting {
		if ev&(evWrite|evError) == 0 {
			return nil
		}
		if err := socketError(ctx.fd); err != nil {
			return common.NewConnectionError("connect", ctx.remote, err)
		}
		ctx.connecting = false
		Logger.Debugf("Connected to %s", ctx.remote)
		return l.onWritable(ctx)
	}

	if ev&(evRead|evError) != 0 {
		if err := l.onReadable(ctx); err != nil {
			return err
		}
	}
	if ev&evWrite != 0 {
		return l.onWritable(ctx)
	}
	return nil
}

// onReadable reads once into the input buffer and hands complete frames to the
// handshake or the handler, depending on the phase
func (l *eventLoop[S]) onReadable(ctx *channelContext[S]) error {
	n, err := readSocket(ctx.fd, ctx.in.Free())
	if errors.Is(err, errWouldBlock) {
		return nil
	}
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		return common.NewConnectionError("read", ctx.remote, err)
	}
	if n > 0 {
		ctx.in.Commit(n)
		ctx.in.Scan()
		l.r.metrics.bytesIn.Add(n)
	}

	if err := l.processInput(ctx); err != nil {
		return err
	}
	if eof {
		return common.NewConnectionError("read", ctx.remote, common.ErrPeerClosed)
	}
	return nil
}

func (l *eventLoop[S]) processInput(ctx *channelContext[S]) error {
	switch ctx.Phase() {
	case transport.PhaseCreated:
		if l.r.role != transport.RoleServer || ctx.in.Frames() < 2 {
			return nil
		}
		return l.receiveSessionKey(ctx)
	case transport.PhaseClientKeySent:
		if ctx.in.Frames() < 1 {
			return nil
		}
		if err := l.receiveAck(ctx); err != nil {
			return err
		}
		return l.deliver(ctx)
	case transport.PhaseConnected:
		return l.deliver(ctx)
	default:
		return nil
	}
}

// deliver decrypts all complete frames and passes them to the handler in arrival order
func (l *eventLoop[S]) deliver(ctx *channelContext[S]) error {
	if ctx.in.Frames() == 0 {
		return nil
	}
	for _, frame := range ctx.in.Next(-1) {
		msg, err := codec.DecodeFrame(ctx.session, frame)
		if err != nil {
			return common.NewConnectionError("decode", ctx.remote, err)
		}
		l.r.metrics.framesIn.Inc()
		if err := l.r.handler.OnMessage(ctx, msg); err != nil {
			return common.NewConnectionError("message", ctx.remote, err)
		}
	}
	// the handler may have responses now
	return l.setWrite(ctx, true)
}

func (l *eventLoop[S]) onWritable(ctx *channelContext[S]) error {
	switch ctx.Phase() {
	case transport.PhaseCreated:
		if l.r.role == transport.RoleClient {
			if err := l.sendSessionKey(ctx); err != nil {
				return err
			}
		}
	case transport.PhaseServerKeyReceived:
		if err := l.sendAck(ctx); err != nil {
			return err
		}
		// frames that arrived together with the session key
		if err := l.deliver(ctx); err != nil {
			return err
		}
	}

	if ctx.Phase() == transport.PhaseConnected {
		msgs, err := l.r.handler.OnWritable(ctx)
		if err != nil {
			return common.NewConnectionError("message", ctx.remote, err)
		}
		for _, msg := range msgs {
			frame, err := codec.EncodeFrame(ctx.session, msg)
			if err != nil {
				return common.NewConnectionError("encode", ctx.remote, err)
			}
			ctx.out.push(frame)
			l.r.metrics.framesOut.Inc()
		}
	}
	return l.flush(ctx)
}

// flush writes as much of the output queue as the socket accepts and keeps write
// interest registered only while data is pending
func (l *eventLoop[S]) flush(ctx *channelContext[S]) error {
	n, err := ctx.out.flush(func(p []byte) (int, error) {
		return writeSocket(ctx.fd, p)
	})
	l.r.metrics.bytesOut.Add(n)
	if err != nil {
		return common.NewConnectionError("write", ctx.remote, err)
	}
	return l.setWrite(ctx, !ctx.out.empty())
}

func (l *eventLoop[S]) setWrite(ctx *channelContext[S], on bool) error {
	if ctx.writeArmed == on {
		return nil
	}
	ev := evRead
	if on {
		ev |= evWrite
	}
	if err := l.poller.modify(ctx.fd, ev); err != nil {
		return common.NewConnectionError("poll", ctx.remote, err)
	}
	ctx.writeArmed = on
	return nil
}

// armEstablished registers write interest on every connected connection
func (l *eventLoop[S]) armEstablished() {
	for _, ctx := range l.conns {
		if ctx.Phase() != transport.PhaseConnected {
			continue
		}
		if err := l.setWrite(ctx, true); err != nil {
			l.fail(ctx, err)
		}
	}
}

// --------------------------------------------------------------------------
// Connection bookkeeping
// --------------------------------------------------------------------------

func (l *eventLoop[S]) register(ctx *channelContext[S]) {
	l.conns[ctx.fd] = ctx
	l.r.connections.Store(ctx.fd, ctx.info())
	l.r.metrics.connections.Inc()
	l.r.metrics.accepted.Inc()
}

func (l *eventLoop[S]) transition(ctx *channelContext[S], phase transport.Phase) {
	ctx.setPhase(phase)
	l.r.connections.Store(ctx.fd, ctx.info())
}

// fail closes a connection after an error. A client reactor stops entirely.
func (l *eventLoop[S]) fail(ctx *channelContext[S], err error) {
	if ctx.Phase() != transport.PhaseConnected {
		l.r.metrics.handshakeFailures.Inc()
	}

	switch {
	case l.r.role == transport.RoleClient:
		Logger.Errorf("Connection to %s failed, closing transport: %v", ctx.remote, err)
		l.err = err
		l.stop.Store(true)
	case errors.Is(err, common.ErrPeerClosed):
		Logger.Debugf("Connection %s closed by peer", ctx.remote)
	default:
		Logger.Warningf("Closing connection %s: %v", ctx.remote, err)
	}
	l.closeConn(ctx, err)
}

func (l *eventLoop[S]) closeConn(ctx *channelContext[S], err error) {
	_ = l.poller.remove(ctx.fd)
	_ = closeSocket(ctx.fd)
	delete(l.conns, ctx.fd)
	l.r.connections.Delete(ctx.fd)
	l.r.metrics.connections.Dec()

	if listener, ok := l.r.handler.(transport.IDisconnectListener[S]); ok {
		listener.OnDisconnected(ctx, err)
	}
}
