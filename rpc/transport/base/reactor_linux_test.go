//go:build linux

package base

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const waitTimeout = 5 * time.Second

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

type loopbackConnector struct{}

func (loopbackConnector) GetName() string { return "loopback" }

func (loopbackConnector) Resolve(endpoint string) (int, unix.Sockaddr, error) {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return 0, nil, err
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return 0, nil, err
	}
	sa := &unix.SockaddrInet4{Port: p}
	copy(sa.Addr[:], net.ParseIP(host).To4())
	return unix.AF_INET, sa, nil
}

func (loopbackConnector) PrepareListen(string) error { return nil }

func (loopbackConnector) UpgradeSocket(int, common.TransportConfig) error { return nil }

// echoHandler answers every message with the same message
type echoHandler struct {
	received chan string
}

type echoState struct {
	pending [][]byte
}

func newEchoHandler() *echoHandler {
	return &echoHandler{received: make(chan string, 1024)}
}

func (h *echoHandler) NewState() *echoState { return &echoState{} }

func (h *echoHandler) OnMessage(conn transport.IConnection[*echoState], msg []byte) error {
	st := conn.State()
	st.pending = append(st.pending, msg)
	// tests that never read received must not stall the reactor
	select {
	case h.received <- string(msg):
	default:
	}
	return nil
}

func (h *echoHandler) OnWritable(conn transport.IConnection[*echoState]) ([][]byte, error) {
	st := conn.State()
	out := st.pending
	st.pending = nil
	return out, nil
}

// outboxHandler sends whatever was queued with send
type outboxHandler struct {
	mu        sync.Mutex
	outbox    [][]byte
	received  chan string
	connected chan struct{}
	once      sync.Once
}

func newOutboxHandler() *outboxHandler {
	return &outboxHandler{received: make(chan string, 1024), connected: make(chan struct{})}
}

func (h *outboxHandler) NewState() struct{} { return struct{}{} }

func (h *outboxHandler) OnMessage(_ transport.IConnection[struct{}], msg []byte) error {
	h.received <- string(msg)
	return nil
}

func (h *outboxHandler) OnWritable(transport.IConnection[struct{}]) ([][]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.outbox
	h.outbox = nil
	return out, nil
}

func (h *outboxHandler) OnConnected(transport.IConnection[struct{}]) {
	h.once.Do(func() { close(h.connected) })
}

func (h *outboxHandler) send(r *Reactor[struct{}], msgs ...string) error {
	h.mu.Lock()
	for _, m := range msgs {
		h.outbox = append(h.outbox, []byte(m))
	}
	h.mu.Unlock()
	return r.Wake()
}

func testConfig(endpoint string) common.TransportConfig {
	return common.TransportConfig{
		Endpoint:          endpoint,
		PollTimeoutMillis: 100,
		BufferIncrement:   16,
	}
}

func mustCodec(t *testing.T) *codec.AESCodec {
	c, err := codec.GenerateAESCodec()
	require.NoError(t, err)
	return c
}

func startServer(t *testing.T, bootstrap codec.ICodec) (*Reactor[*echoState], *echoHandler) {
	h := newEchoHandler()
	server := NewServerReactor[*echoState](loopbackConnector{}, testConfig("127.0.0.1:0"), bootstrap, h)
	require.NoError(t, server.Connect())
	t.Cleanup(func() { _ = server.Close() })
	return server, h
}

func startClient(t *testing.T, addr string, bootstrap codec.ICodec) (*Reactor[struct{}], *outboxHandler) {
	h := newOutboxHandler()
	client := NewClientReactor[struct{}](loopbackConnector{}, testConfig(addr), bootstrap, h)
	require.NoError(t, client.Connect())
	t.Cleanup(func() { _ = client.Close() })
	return client, h
}

func waitConnected(t *testing.T, h *outboxHandler) {
	select {
	case <-h.connected:
	case <-time.After(waitTimeout):
		t.Fatal("handshake did not complete")
	}
}

func receive(t *testing.T, ch chan string) string {
	select {
	case msg := <-ch:
		return msg
	case <-time.After(waitTimeout):
		t.Fatal("no message received")
		return ""
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestReactorHandshakeAndEcho(t *testing.T) {
	bootstrap := mustCodec(t)
	server, sh := startServer(t, bootstrap)
	client, ch := startClient(t, server.Addr(), bootstrap)

	waitConnected(t, ch)
	require.NoError(t, ch.send(client, "put k1 v1"))

	assert.Equal(t, "put k1 v1", receive(t, sh.received))
	assert.Equal(t, "put k1 v1", receive(t, ch.received))

	require.Eventually(t, func() bool {
		conns := server.Connections()
		return len(conns) == 1 && conns[0].Phase == transport.PhaseConnected
	}, waitTimeout, 10*time.Millisecond)
}

func TestReactorOrderAndSpecialBytes(t *testing.T) {
	bootstrap := mustCodec(t)
	server, sh := startServer(t, bootstrap)
	client, ch := startClient(t, server.Addr(), bootstrap)
	waitConnected(t, ch)

	msgs := []string{
		"a\nb",
		"\\n\\\\",
		strings.Repeat("x\n\\", 5000),
		"\n",
		"last",
	}
	require.NoError(t, ch.send(client, msgs...))

	for _, m := range msgs {
		assert.Equal(t, m, receive(t, sh.received))
	}
	for _, m := range msgs {
		assert.Equal(t, m, receive(t, ch.received))
	}
}

func TestReactorManyMessages(t *testing.T) {
	bootstrap := mustCodec(t)
	server, _ := startServer(t, bootstrap)
	client, ch := startClient(t, server.Addr(), bootstrap)
	waitConnected(t, ch)

	const n = 2000
	go func() {
		for i := 0; i < n; i++ {
			if err := ch.send(client, strconv.Itoa(i)); err != nil {
				return
			}
		}
	}()
	for i := 0; i < n; i++ {
		require.Equal(t, strconv.Itoa(i), receive(t, ch.received))
	}
}

func TestReactorHandshakeFailure(t *testing.T) {
	server, sh := startServer(t, mustCodec(t))
	client, ch := startClient(t, server.Addr(), mustCodec(t))

	// messages queued before the handshake must never be delivered
	_ = ch.send(client, "secret")

	select {
	case <-client.Done():
	case <-time.After(waitTimeout):
		t.Fatal("client did not stop after failed handshake")
	}

	assert.True(t, common.IsConnectionFatal(client.Err()), "unexpected error: %v", client.Err())
	select {
	case <-ch.connected:
		t.Fatal("client reported an established connection")
	default:
	}
	assert.Empty(t, sh.received)

	require.Eventually(t, func() bool { return len(server.Connections()) == 0 }, waitTimeout, 10*time.Millisecond)
}

func TestReactorServerSurvivesBadClient(t *testing.T) {
	bootstrap := mustCodec(t)
	server, sh := startServer(t, bootstrap)

	bad, _ := startClient(t, server.Addr(), mustCodec(t))
	select {
	case <-bad.Done():
	case <-time.After(waitTimeout):
		t.Fatal("bad client was not rejected")
	}

	good, gh := startClient(t, server.Addr(), bootstrap)
	waitConnected(t, gh)
	require.NoError(t, gh.send(good, "still serving"))
	assert.Equal(t, "still serving", receive(t, sh.received))
}

func TestReactorConnectTwice(t *testing.T) {
	bootstrap := mustCodec(t)
	server, _ := startServer(t, bootstrap)
	assert.ErrorIs(t, server.Connect(), common.ErrAlreadyConnected)

	client, ch := startClient(t, server.Addr(), bootstrap)
	waitConnected(t, ch)
	assert.ErrorIs(t, client.Connect(), common.ErrAlreadyConnected)
}

func TestReactorCloseAndReconnect(t *testing.T) {
	bootstrap := mustCodec(t)
	h := newEchoHandler()
	server := NewServerReactor[*echoState](loopbackConnector{}, testConfig("127.0.0.1:0"), bootstrap, h)

	require.NoError(t, server.Close())
	require.NoError(t, server.Connect())
	addr := server.Addr()
	assert.NotEmpty(t, addr)

	require.NoError(t, server.Close())
	require.NoError(t, server.Close())
	assert.Empty(t, server.Addr())
	assert.NoError(t, server.Err())
	assert.ErrorIs(t, server.Wake(), common.ErrNotConnected)

	select {
	case <-server.Done():
	default:
		t.Fatal("done channel of a closed reactor is open")
	}

	require.NoError(t, server.Connect())
	require.NoError(t, server.Close())
}

func TestReactorClientStopsWhenServerCloses(t *testing.T) {
	bootstrap := mustCodec(t)
	server, _ := startServer(t, bootstrap)
	client, ch := startClient(t, server.Addr(), bootstrap)
	waitConnected(t, ch)

	require.NoError(t, server.Close())

	select {
	case <-client.Done():
	case <-time.After(waitTimeout):
		t.Fatal("client did not notice the closed server")
	}
	assert.ErrorIs(t, client.Err(), common.ErrPeerClosed)
}

func TestReactorConnectRefused(t *testing.T) {
	// reserve a port and release it again
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	h := newOutboxHandler()
	client := NewClientReactor[struct{}](loopbackConnector{}, testConfig(addr), mustCodec(t), h)
	if err := client.Connect(); err != nil {
		assert.True(t, common.IsConnectionFatal(err))
		return
	}
	defer client.Close()

	select {
	case <-client.Done():
	case <-time.After(waitTimeout):
		t.Fatal("client did not stop")
	}
	assert.True(t, common.IsConnectionFatal(client.Err()))
}
