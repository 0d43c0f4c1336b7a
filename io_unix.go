//go:build unix

package xhttp

import "golang.org/x/sys/unix"

// drainReadable reads from fd into buf's writable region until the
// kernel would block, the peer closed the connection, or an
// unrecoverable error occurs. Because fds are registered edge-triggered,
// leaving any readable bytes unread means epoll will never tell the loop
// about them again.
func drainReadable(fd int, buf *connBuffer) (closed bool, err error) {
	for {
		slice := buf.writableSlice()
		n, rerr := unix.Read(fd, slice)
		if n > 0 {
			buf.commit(n)
		}
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
			return false, nil
		}
		if rerr != nil {
			if rerr == unix.EINTR {
				continue
			}
			return false, rerr
		}
		if n == 0 {
			return true, nil
		}
	}
}

// drainWritable writes buf's pending bytes to fd until the kernel would
// block or every byte queued has been sent. It compacts buf as bytes are
// confirmed sent, preserving the invariant that the unsent prefix always
// starts at offset 0.
func drainWritable(fd int, buf *connBuffer) (wouldBlock bool, err error) {
	for buf.used > 0 {
		n, werr := unix.Write(fd, buf.bytes())
		if n > 0 {
			buf.compact(n)
		}
		if werr == unix.EAGAIN || werr == unix.EWOULDBLOCK {
			return true, nil
		}
		if werr != nil {
			if werr == unix.EINTR {
				continue
			}
			return false, werr
		}
		if n == 0 {
			return true, nil
		}
	}
	return false, nil
}

func setNonBlocking(fd int) error {
	return unix.SetNonblock(fd, true)
}
