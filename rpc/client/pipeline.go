package client

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/sKV/lib/util"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
)

// awaitQueue is the per connection FIFO of commands that were sent and not answered yet
type awaitQueue struct {
	items []*Command
	head  int
}

func (q *awaitQueue) push(c *Command) {
	q.items = append(q.items, c)
}

func (q *awaitQueue) pop() (*Command, bool) {
	if q.head == len(q.items) {
		return nil, false
	}
	c := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return c, true
}

func (q *awaitQueue) len() int {
	return len(q.items) - q.head
}

// Pipeline is the reactor handler of a client. Commands are queued by any goroutine
// and sent by the reactor on the next writable event. Responses are matched to commands
// strictly by arrival order, there are no request ids.
type Pipeline struct {
	queue *util.LockFreeMPSC[Command]
	wake  func()

	// flush barrier: pending counts enqueued commands without response,
	// idle is closed whenever pending is zero
	mu      sync.Mutex
	pending int
	idle    chan struct{}

	closed       atomic.Bool
	ready        chan struct{}
	readyOnce    sync.Once
	disconnected chan struct{}
	discOnce     sync.Once
	err          error
}

// NewPipeline creates a pipeline. wake is called after every enqueued command and must
// make the reactor poll the pipeline for outgoing messages (see base.Reactor.Wake).
func NewPipeline(wake func()) *Pipeline {
	idle := make(chan struct{})
	close(idle)
	return &Pipeline{
		queue:        util.NewLockFreeMPSC[Command](),
		wake:         wake,
		idle:         idle,
		ready:        make(chan struct{}),
		disconnected: make(chan struct{}),
	}
}

// Enqueue queues a request and returns its future. Requests of one goroutine are sent
// in the order they were enqueued. After Close the returned command has already failed
// with common.ErrClosed.
func (p *Pipeline) Enqueue(request string) *Command {
	if p.closed.Load() {
		return failedCommand(request, common.ErrClosed)
	}

	c := newCommand(request)
	p.acquire()
	if !p.queue.Push(c) {
		p.release()
		c.resolve("", false, common.ErrClosed)
		return c
	}
	if p.wake != nil {
		p.wake()
	}
	return c
}

// AwaitFlush blocks until every enqueued command received its response or timeout elapsed
func (p *Pipeline) AwaitFlush(timeout time.Duration) error {
	p.mu.Lock()
	idle := p.idle
	pending := p.pending
	p.mu.Unlock()

	if pending == 0 {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-idle:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: flush did not complete after %s", common.ErrTimeout, timeout)
	}
}

// Pending returns the number of commands without response
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Close rejects further commands. Commands already sent keep waiting for their response.
func (p *Pipeline) Close() {
	p.closed.Store(true)
	p.queue.Close()
}

func (p *Pipeline) acquire() {
	p.mu.Lock()
	if p.pending == 0 {
		p.idle = make(chan struct{})
	}
	p.pending++
	p.mu.Unlock()
}

func (p *Pipeline) release() {
	p.mu.Lock()
	p.pending--
	if p.pending == 0 {
		close(p.idle)
	}
	p.mu.Unlock()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IHandler)
// --------------------------------------------------------------------------

func (p *Pipeline) NewState() *awaitQueue {
	return &awaitQueue{}
}

func (p *Pipeline) OnMessage(conn transport.IConnection[*awaitQueue], msg []byte) error {
	c, ok := conn.State().pop()
	if !ok {
		return fmt.Errorf("%w: %q", common.ErrUnexpectedResponse, msg)
	}

	value, ok, err := common.ParseResponse(c.request, string(msg))
	c.resolve(value, ok, err)
	p.release()
	return nil
}

func (p *Pipeline) OnWritable(conn transport.IConnection[*awaitQueue]) ([][]byte, error) {
	q := conn.State()
	var out [][]byte
	p.queue.Drain(func(c *Command) {
		q.push(c)
		out = append(out, c.payload)
	})
	return out, nil
}

func (p *Pipeline) OnConnected(conn transport.IConnection[*awaitQueue]) {
	Logger.Debugf("Pipeline to %s ready", conn.RemoteAddr())
	p.readyOnce.Do(func() { close(p.ready) })
}

func (p *Pipeline) OnDisconnected(conn transport.IConnection[*awaitQueue], err error) {
	if n := conn.State().len(); n > 0 {
		Logger.Warningf("Connection to %s closed with %d commands waiting for a response", conn.RemoteAddr(), n)
	}
	p.discOnce.Do(func() {
		if err == nil {
			err = common.ErrClosed
		}
		p.err = err
		p.Close()
		close(p.disconnected)
	})
}
