package codec

// FrameBuffer accumulates received bytes and splits them into frames.
//
// The buffer remembers how far it has scanned, so every byte is inspected for a delimiter
// exactly once. Offsets of found delimiters are kept in ascending order until the frames
// they terminate are taken with Next.
//
// FrameBuffer is not safe for concurrent use, it is owned by the reactor goroutine.
type FrameBuffer struct {
	buf       []byte
	pos       int   // write position, bytes [0, pos) are buffered
	scanned   int   // bytes [0, scanned) were inspected for delimiters
	splits    []int // unconsumed delimiter offsets, ascending
	lastDelim int   // offset of the last recorded delimiter, -1 if none
	frames    int   // number of non-empty frames among splits
	increment int
}

// NewFrameBuffer creates a buffer of increment bytes that grows by increment bytes
func NewFrameBuffer(increment int) *FrameBuffer {
	if increment <= 0 {
		increment = 4096
	}
	return &FrameBuffer{
		buf:       make([]byte, increment),
		lastDelim: -1,
		increment: increment,
	}
}

// Free returns the writable tail of the buffer. If the buffer is full it is grown by
// the increment first, keeping all buffered bytes and the write position.
func (b *FrameBuffer) Free() []byte {
	if b.pos == len(b.buf) {
		grown := make([]byte, len(b.buf)+b.increment)
		copy(grown, b.buf[:b.pos])
		b.buf = grown
	}
	return b.buf[b.pos:]
}

// Commit marks n bytes of the slice returned by Free as written
func (b *FrameBuffer) Commit(n int) {
	b.pos += n
}

// Write appends p, growing the buffer as needed. It never fails.
func (b *FrameBuffer) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n := copy(b.Free(), p[written:])
		b.Commit(n)
		written += n
	}
	return written, nil
}

// Scan inspects the bytes appended since the last scan and returns the number of
// complete non-empty frames that are ready to be taken.
func (b *FrameBuffer) Scan() int {
	for i := b.scanned; i < b.pos; i++ {
		if b.buf[i] != Delimiter {
			continue
		}
		if i > b.lastDelim+1 {
			b.frames++
		}
		b.splits = append(b.splits, i)
		b.lastDelim = i
	}
	b.scanned = b.pos

	// only empty frames are pending, drop them
	if b.frames == 0 && len(b.splits) > 0 {
		b.compact(b.lastDelim+1, len(b.splits))
	}
	return b.frames
}

// Frames returns the number of complete non-empty frames found by Scan and not yet taken
func (b *FrameBuffer) Frames() int {
	return b.frames
}

// Next removes up to max complete frames (max < 0 means all) and returns copies of
// them without their delimiters. Empty frames are dropped silently.
func (b *FrameBuffer) Next(max int) [][]byte {
	if max < 0 || max > b.frames {
		max = b.frames
	}

	result := make([][]byte, 0, max)
	left, k := -1, 0
	for ; k < len(b.splits) && len(result) < max; k++ {
		right := b.splits[k]
		if right > left+1 {
			frame := make([]byte, right-left-1)
			copy(frame, b.buf[left+1:right])
			result = append(result, frame)
		}
		left = right
	}
	b.frames -= len(result)

	if left >= 0 {
		b.compact(left+1, k)
	}
	return result
}

// Buffered returns the number of bytes held by the buffer
func (b *FrameBuffer) Buffered() int {
	return b.pos
}

// Cap returns the current capacity of the buffer
func (b *FrameBuffer) Cap() int {
	return len(b.buf)
}

// compact drops the first n bytes and the first k split offsets
func (b *FrameBuffer) compact(n, k int) {
	copy(b.buf, b.buf[n:b.pos])
	b.pos -= n
	b.scanned -= n
	b.lastDelim -= n

	remaining := b.splits[:0]
	for _, s := range b.splits[k:] {
		remaining = append(remaining, s-n)
	}
	b.splits = remaining
}
