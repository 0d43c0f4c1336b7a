package xhttp

import "github.com/valyala/bytebufferpool"

// minBufferSize is the smallest backing slice a connBuffer is ever given.
const minBufferSize = 512

// growHeadroom is the minimum spare capacity a connBuffer must keep past
// its used region; falling below it triggers a grow.
const growHeadroom = 128

// connBuffer is a growable byte buffer wrapping a pooled bytebufferpool
// slice. used bytes at the front are valid data; everything from used to
// cap(buf) is free space available for the next read. Unlike a plain
// append-only bytebufferpool.ByteBuffer, a connBuffer also supports
// discarding a consumed prefix (compact) so a connection can keep
// parsing pipelined requests out of one buffer without re-reading
// already-framed bytes.
type connBuffer struct {
	bb   *bytebufferpool.ByteBuffer
	used int
}

func newConnBuffer() *connBuffer {
	return &connBuffer{bb: bytebufferpool.Get()}
}

// release returns the backing slice to the pool. The connBuffer must not
// be used afterward.
func (c *connBuffer) release() {
	bytebufferpool.Put(c.bb)
	c.bb = nil
	c.used = 0
}

// bytes returns the valid region, buf[:used].
func (c *connBuffer) bytes() []byte {
	return c.bb.B[:c.used]
}

// headroom returns the number of free bytes past the valid region.
func (c *connBuffer) headroom() int {
	return cap(c.bb.B) - c.used
}

// ensureHeadroom grows the backing slice if fewer than growHeadroom bytes
// of free space remain, doubling capacity (or reaching minBufferSize,
// whichever is larger) each time it grows.
func (c *connBuffer) ensureHeadroom() {
	if c.headroom() >= growHeadroom {
		return
	}
	newCap := cap(c.bb.B) * 2
	if newCap < minBufferSize {
		newCap = minBufferSize
	}
	grown := make([]byte, c.used, newCap)
	copy(grown, c.bb.B[:c.used])
	c.bb.B = grown
}

// writableSlice returns the free region past used, growing first if
// necessary, so a reader syscall can fill it directly.
func (c *connBuffer) writableSlice() []byte {
	c.ensureHeadroom()
	return c.bb.B[c.used:cap(c.bb.B)]
}

// commit records that n bytes were written into the slice writableSlice
// most recently returned.
func (c *connBuffer) commit(n int) {
	c.used += n
}

// compact discards the first n bytes of the valid region, sliding the
// remainder down to offset 0, so the unconsumed remainder always starts
// at offset 0. Any slices a caller still holds into the discarded or
// shifted region are invalidated by this call; callers must re-derive
// offsets from the buffer after compacting.
func (c *connBuffer) compact(n int) {
	if n <= 0 {
		return
	}
	if n >= c.used {
		c.used = 0
		return
	}
	copy(c.bb.B, c.bb.B[n:c.used])
	c.used -= n
}

// reset discards all valid data without shrinking the backing slice.
func (c *connBuffer) reset() {
	c.used = 0
}

func (c *connBuffer) cap() int {
	return cap(c.bb.B)
}
