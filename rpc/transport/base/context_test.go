package base

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortWriter accepts at most limit bytes per call and blocks after blocksAfter calls
type shortWriter struct {
	buf         bytes.Buffer
	limit       int
	calls       int
	blocksAfter int
}

func (w *shortWriter) write(p []byte) (int, error) {
	w.calls++
	if w.blocksAfter > 0 && w.calls > w.blocksAfter {
		return 0, errWouldBlock
	}
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.buf.Write(p)
}

func TestOutputQueuePartialWrites(t *testing.T) {
	var q outputQueue
	q.push([]byte("hello\n"))
	q.push(nil)
	q.push([]byte("world\n"))
	assert.Equal(t, 12, q.size)

	w := &shortWriter{limit: 4, blocksAfter: 3}
	n, err := q.flush(w.write)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.False(t, q.empty())
	assert.Equal(t, "hello\nworl", w.buf.String())

	w.blocksAfter = 0
	n, err = q.flush(w.write)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, q.empty())
	assert.Equal(t, 0, q.size)
	assert.Equal(t, "hello\nworld\n", w.buf.String())
}

func TestOutputQueueWriteError(t *testing.T) {
	var q outputQueue
	q.push([]byte("data"))

	broken := errors.New("broken pipe")
	_, err := q.flush(func([]byte) (int, error) { return 0, broken })
	assert.ErrorIs(t, err, broken)
	assert.False(t, q.empty())
}

func TestChannelContextLazyState(t *testing.T) {
	created := 0
	ctx := newChannelContext(3, "peer", 16, func() *int {
		created++
		v := 42
		return &v
	})
	assert.Equal(t, 0, created)
	assert.Equal(t, 42, *ctx.State())
	assert.Same(t, ctx.State(), ctx.State())
	assert.Equal(t, 1, created)
	assert.Equal(t, 3, ctx.ID())
	assert.Equal(t, "peer", ctx.RemoteAddr())
}
