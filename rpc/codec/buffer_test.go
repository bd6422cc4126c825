package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toStrings(frames [][]byte) []string {
	result := make([]string, len(frames))
	for i, f := range frames {
		result[i] = string(f)
	}
	return result
}

func TestFrameBufferSplits(t *testing.T) {
	b := NewFrameBuffer(64)
	_, _ = b.Write([]byte("one\ntwo\nthr"))

	assert.Equal(t, 2, b.Scan())
	assert.Equal(t, []string{"one", "two"}, toStrings(b.Next(-1)))
	assert.Equal(t, 0, b.Frames())
	assert.Equal(t, 3, b.Buffered())

	_, _ = b.Write([]byte("ee\n"))
	assert.Equal(t, 1, b.Scan())
	assert.Equal(t, []string{"three"}, toStrings(b.Next(-1)))
	assert.Equal(t, 0, b.Buffered())
}

func TestFrameBufferSkipsEmptyFrames(t *testing.T) {
	b := NewFrameBuffer(64)
	_, _ = b.Write([]byte("\n\na\n\n\nb\n\n"))

	assert.Equal(t, 2, b.Scan())
	assert.Equal(t, []string{"a", "b"}, toStrings(b.Next(-1)))
	assert.Equal(t, 0, b.Frames())
}

func TestFrameBufferReleasesEmptyFrames(t *testing.T) {
	b := NewFrameBuffer(64)
	_, _ = b.Write([]byte(strings.Repeat("\n", 100000)))

	assert.Equal(t, 0, b.Scan())
	assert.Equal(t, 0, b.Buffered())

	// a partial frame after empty ones keeps only its own bytes
	_, _ = b.Write([]byte("\n\n\nab"))
	assert.Equal(t, 0, b.Scan())
	assert.Equal(t, 2, b.Buffered())

	_, _ = b.Write([]byte("\n"))
	assert.Equal(t, 1, b.Scan())
	assert.Equal(t, []string{"ab"}, toStrings(b.Next(-1)))
	assert.Equal(t, 0, b.Buffered())
}

func TestFrameBufferMax(t *testing.T) {
	b := NewFrameBuffer(64)
	_, _ = b.Write([]byte("a\nb\n\nc\nd"))

	require.Equal(t, 3, b.Scan())
	assert.Equal(t, []string{"a"}, toStrings(b.Next(1)))
	assert.Equal(t, 2, b.Frames())
	assert.Equal(t, []string{"b", "c"}, toStrings(b.Next(5)))
	assert.Equal(t, 0, b.Frames())
	assert.Empty(t, b.Next(-1))

	_, _ = b.Write([]byte("\n"))
	assert.Equal(t, 1, b.Scan())
	assert.Equal(t, []string{"d"}, toStrings(b.Next(-1)))
}

func TestFrameBufferGrowth(t *testing.T) {
	b := NewFrameBuffer(8)
	assert.Equal(t, 8, b.Cap())

	long := strings.Repeat("x", 30)
	for _, c := range []byte(long) {
		free := b.Free()
		require.NotEmpty(t, free)
		free[0] = c
		b.Commit(1)
		b.Scan()
	}
	assert.Equal(t, 32, b.Cap())
	assert.Equal(t, 0, b.Frames())

	_, _ = b.Write([]byte("\nrest"))
	assert.Equal(t, 1, b.Scan())
	assert.Equal(t, []string{long}, toStrings(b.Next(-1)))
	assert.Equal(t, 4, b.Buffered())
}

func TestFrameBufferIncrementalScan(t *testing.T) {
	b := NewFrameBuffer(16)
	msg := "hello\nworld\n"
	for i := 0; i < len(msg); i++ {
		_, _ = b.Write([]byte{msg[i]})
		b.Scan()
	}
	assert.Equal(t, 2, b.Frames())
	assert.Equal(t, []string{"hello", "world"}, toStrings(b.Next(-1)))
}
