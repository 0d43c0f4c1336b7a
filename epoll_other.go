//go:build !linux

package xhttp

import "golang.org/x/sys/unix"

// pollMultiplexer is the portable fallback multiplexer for platforms
// without epoll. It re-evaluates the whole registered set on every wait
// call, so it scales as O(n) in the number of connections rather than
// epoll's O(1); it exists so this package builds and runs outside Linux,
// not as a production substitute for the epoll backend.
type pollMultiplexer struct {
	fds map[int]bool // fd -> writable interest
}

func newMultiplexer() (multiplexer, error) {
	return &pollMultiplexer{fds: make(map[int]bool)}, nil
}

func (m *pollMultiplexer) add(fd int, writable bool) error {
	m.fds[fd] = writable
	return nil
}

func (m *pollMultiplexer) modify(fd int, writable bool) error {
	if _, ok := m.fds[fd]; !ok {
		return nil
	}
	m.fds[fd] = writable
	return nil
}

func (m *pollMultiplexer) remove(fd int) error {
	delete(m.fds, fd)
	return nil
}

func (m *pollMultiplexer) wait(events []readyEvent, timeoutMS int) ([]readyEvent, error) {
	out := events[:0]
	if len(m.fds) == 0 {
		return out, nil
	}

	pfds := make([]unix.PollFd, 0, len(m.fds))
	order := make([]int, 0, len(m.fds))
	for fd, writable := range m.fds {
		ev := int16(unix.POLLIN)
		if writable {
			ev |= unix.POLLOUT
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: ev})
		order = append(order, fd)
	}

	n, err := unix.Poll(pfds, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return out, nil
		}
		return out, err
	}
	if n == 0 {
		return out, nil
	}

	for i, pfd := range pfds {
		if pfd.Revents == 0 {
			continue
		}
		out = append(out, readyEvent{
			fd:       order[i],
			readable: pfd.Revents&unix.POLLIN != 0,
			writable: pfd.Revents&unix.POLLOUT != 0,
			hangup:   pfd.Revents&(unix.POLLHUP|unix.POLLERR) != 0,
		})
	}
	return out, nil
}

func (m *pollMultiplexer) close() error {
	return nil
}
