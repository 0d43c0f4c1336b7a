//go:build linux

package xhttp

import "golang.org/x/sys/unix"

// epollMultiplexer is the Linux multiplexer backend. Every fd is
// registered edge-triggered (EPOLLET): the event loop must drain a
// readable fd until it would block, since epoll will not re-notify for
// data that was already signalled once.
type epollMultiplexer struct {
	fd int
}

func newMultiplexer() (multiplexer, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollMultiplexer{fd: fd}, nil
}

func eventMask(writable bool) uint32 {
	mask := uint32(unix.EPOLLIN | unix.EPOLLPRI | unix.EPOLLET | unix.EPOLLRDHUP)
	if writable {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (m *epollMultiplexer) add(fd int, writable bool) error {
	ev := unix.EpollEvent{Events: eventMask(writable), Fd: int32(fd)}
	return unix.EpollCtl(m.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (m *epollMultiplexer) modify(fd int, writable bool) error {
	ev := unix.EpollEvent{Events: eventMask(writable), Fd: int32(fd)}
	return unix.EpollCtl(m.fd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (m *epollMultiplexer) remove(fd int) error {
	err := unix.EpollCtl(m.fd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (m *epollMultiplexer) wait(events []readyEvent, timeoutMS int) ([]readyEvent, error) {
	raw := make([]unix.EpollEvent, cap(events))
	if len(raw) == 0 {
		raw = make([]unix.EpollEvent, 256)
	}
	n, err := unix.EpollWait(m.fd, raw, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return events[:0], nil
		}
		return events[:0], err
	}

	// EPOLLERR and EPOLLHUP are reported as readable and writable so the
	// next read or write surfaces the concrete error.
	out := events[:0]
	for i := 0; i < n; i++ {
		e := raw[i]
		out = append(out, readyEvent{
			fd:       int(e.Fd),
			readable: e.Events&(unix.EPOLLIN|unix.EPOLLPRI|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0,
			writable: e.Events&(unix.EPOLLOUT|unix.EPOLLHUP|unix.EPOLLERR) != 0,
		})
	}
	return out, nil
}

func (m *epollMultiplexer) close() error {
	return unix.Close(m.fd)
}
