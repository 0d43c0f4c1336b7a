package xhttp

// multiplexer abstracts the readiness notification backend the event
// loop polls. The Linux implementation (epoll_linux.go) is backed by
// epoll in edge-triggered mode; non-Linux platforms fall back to a
// poll(2)-based implementation (epoll_other.go) so the package still
// builds and runs there, at the cost of O(n) readiness scans instead of
// O(1); the interface keeps the event loop itself platform-agnostic.
type multiplexer interface {
	// add registers fd for readiness notifications. writable selects
	// whether write-readiness is also requested (used while a
	// connection has output queued).
	add(fd int, writable bool) error

	// modify updates the write-readiness interest for an already
	// registered fd.
	modify(fd int, writable bool) error

	// remove deregisters fd. Safe to call even if the fd was already
	// closed.
	remove(fd int) error

	// wait blocks until at least one fd is ready or the timeout (in
	// milliseconds; -1 means forever) elapses, appending ready events to
	// events[:0] and returning the populated slice.
	wait(events []readyEvent, timeoutMS int) ([]readyEvent, error)

	close() error
}

// readyEvent reports one fd's readiness state after a wait call.
type readyEvent struct {
	fd       int
	readable bool
	writable bool
	hangup   bool
}
