package base

import (
	"errors"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/transport"
)

// readiness flags, translated to the multiplexer specific values by the poller
const (
	evRead uint32 = 1 << iota
	evWrite
	evError
)

// errWouldBlock is returned by nonblocking socket operations that have to be retried
// once the socket is ready again
var errWouldBlock = errors.New("operation would block")

// -----------------------------------------------------------
// Output queue
// -----------------------------------------------------------

// outputQueue holds framed messages that still have to be written. Chunks are written
// strictly in order, a partially written chunk is resumed at head.
type outputQueue struct {
	chunks [][]byte
	head   int // bytes of chunks[0] already written
	size   int // bytes not yet written
}

func (q *outputQueue) push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	q.chunks = append(q.chunks, chunk)
	q.size += len(chunk)
}

func (q *outputQueue) empty() bool {
	return len(q.chunks) == 0
}

// flush writes queued chunks until the queue is empty or write would block.
// It returns the number of bytes written.
func (q *outputQueue) flush(write func([]byte) (int, error)) (int, error) {
	total := 0
	for len(q.chunks) > 0 {
		n, err := write(q.chunks[0][q.head:])
		total += n
		q.size -= n
		q.head += n
		if q.head == len(q.chunks[0]) {
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]
			q.head = 0
		}
		if errors.Is(err, errWouldBlock) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			// nothing accepted without an error, wait for the next writable event
			return total, nil
		}
	}
	q.chunks = nil
	return total, nil
}

// -----------------------------------------------------------
// Channel context
// -----------------------------------------------------------

// channelContext is the state of one socket. It is owned by the reactor goroutine,
// snapshots for other goroutines are published by the reactor.
type channelContext[S any] struct {
	fd         int
	remote     string
	in         *codec.FrameBuffer
	out        outputQueue
	session    codec.ICodec
	phase      transport.Phase
	connecting bool // nonblocking connect not completed yet
	writeArmed bool // write interest registered with the poller

	state     S
	stateInit bool
	newState  func() S
}

func newChannelContext[S any](fd int, remote string, increment int, newState func() S) *channelContext[S] {
	return &channelContext[S]{
		fd:       fd,
		remote:   remote,
		in:       codec.NewFrameBuffer(increment),
		newState: newState,
	}
}

func (c *channelContext[S]) setPhase(p transport.Phase) {
	c.phase = p
}

func (c *channelContext[S]) info() transport.ConnectionInfo {
	return transport.ConnectionInfo{ID: c.fd, Remote: c.remote, Phase: c.Phase()}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnection)
// --------------------------------------------------------------------------

func (c *channelContext[S]) ID() int {
	return c.fd
}

func (c *channelContext[S]) RemoteAddr() string {
	return c.remote
}

func (c *channelContext[S]) Phase() transport.Phase {
	return c.phase
}

func (c *channelContext[S]) State() S {
	if !c.stateInit {
		c.state = c.newState()
		c.stateInit = true
	}
	return c.state
}
