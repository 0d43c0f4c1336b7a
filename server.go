//go:build unix

package xhttp

import (
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/yourusername/xhttp/internal/socktune"
)

// Server owns the listening socket, connection pool and event loop for
// one embedded HTTP origin server. Create one with Listen and run its
// loop with Serve; call Quit from any goroutine to ask the loop to
// return after the in-flight iteration.
type Server struct {
	cfg      Config
	cb       Callback
	listenFd int
	mux      multiplexer
	pool     *connPool
	fdToSlot map[int]int32

	quit atomic.Bool

	stats serverStats
}

type serverStats struct {
	requestsServed   atomic.Uint64
	keepAliveCloses  atomic.Uint64
	forcedCloses     atomic.Uint64
	backPressureHits atomic.Uint64
}

// Listen creates, tunes and binds a listening socket on addr:port but
// does not yet accept connections; call Serve to run the event loop. A
// zero Config is replaced with DefaultConfig's values field by field.
func Listen(addr string, port int, cb Callback, cfg Config) (*Server, error) {
	cfg.applyDefaults()

	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return nil, ErrBadAddress
	}
	if cfg.MaxConnections <= 0 {
		return nil, ErrZeroCapacity
	}
	if cfg.Backlog <= 0 {
		return nil, ErrZeroBacklog
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, ErrSocketCreate
	}

	if err := socktune.ApplyListener(fd, socktune.DefaultConfig()); err != nil {
		_ = unix.Close(fd)
		return nil, ErrSocketOpt
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, ErrSocketOpt
	}

	var sa unix.SockaddrInet4
	copy(sa.Addr[:], ip.To4())
	sa.Port = port

	if err := unix.Bind(fd, &sa); err != nil {
		_ = unix.Close(fd)
		return nil, ErrSocketBind
	}
	if err := unix.Listen(fd, cfg.Backlog); err != nil {
		_ = unix.Close(fd)
		return nil, ErrSocketListen
	}
	if err := setNonBlocking(fd); err != nil {
		_ = unix.Close(fd)
		return nil, ErrSocketOpt
	}

	mux, err := newMultiplexer()
	if err != nil {
		_ = unix.Close(fd)
		return nil, ErrMultiplexerCreate
	}
	if err := mux.add(fd, false); err != nil {
		_ = mux.close()
		_ = unix.Close(fd)
		return nil, ErrMultiplexerReg
	}

	return &Server{
		cfg:      cfg,
		cb:       cb,
		listenFd: fd,
		mux:      mux,
		pool:     newConnPool(cfg.MaxConnections),
		fdToSlot: make(map[int]int32, cfg.MaxConnections),
	}, nil
}

// Serve runs the event loop until Quit is called or an unrecoverable
// multiplexer error occurs. It returns nil on a graceful Quit.
func (s *Server) Serve() error {
	events := make([]readyEvent, 0, 256)
	for !s.quit.Load() {
		var err error
		events, err = s.mux.wait(events, 1000)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if ev.fd == s.listenFd {
				s.acceptLoop()
				continue
			}
			s.handleEvent(ev)
		}
	}
	s.shutdown()
	return nil
}

// Quit asks the event loop to stop after its current iteration. Safe to
// call from any goroutine.
func (s *Server) Quit() {
	s.quit.Store(true)
}

// Stats returns a point-in-time snapshot of server activity.
func (s *Server) Stats() Stats {
	return Stats{
		LiveConnections:  s.pool.live(),
		PoolCapacity:     s.pool.capacity,
		RequestsServed:   s.stats.requestsServed.Load(),
		KeepAliveCloses:  s.stats.keepAliveCloses.Load(),
		ForcedCloses:     s.stats.forcedCloses.Load(),
		BackPressureHits: s.stats.backPressureHits.Load(),
	}
}

// acceptLoop drains the listener's accept queue edge-triggered-style:
// since the listening fd is itself registered EPOLLET, every pending
// connection must be accepted now or the loop will never be told about
// it again.
func (s *Server) acceptLoop() {
	for {
		cfd, _, err := unix.Accept(s.listenFd)
		if err != nil {
			return
		}
		if s.pool.full() {
			_ = unix.Close(cfd)
			continue
		}
		if err := setNonBlocking(cfd); err != nil {
			_ = unix.Close(cfd)
			continue
		}
		_ = socktune.Apply(cfd, socktune.DefaultConfig())

		idx, c := s.pool.acquire()
		c.resetForAccept(cfd)

		if err := s.mux.add(cfd, false); err != nil {
			c.teardown()
			s.pool.release(idx)
			_ = unix.Close(cfd)
			continue
		}
		s.fdToSlot[cfd] = idx
	}
}

func (s *Server) handleEvent(ev readyEvent) {
	idx, ok := s.fdToSlot[ev.fd]
	if !ok {
		return
	}
	c := s.pool.get(idx)

	if ev.hangup {
		s.closeConn(ev.fd, idx, c)
		return
	}

	if ev.readable {
		closed, err := drainReadable(ev.fd, c.in)
		if err != nil || closed {
			s.closeConn(ev.fd, idx, c)
			return
		}
	}

	servedBefore := c.served
	closeAfter := c.consumeReady(s.cb, s.pool, &s.cfg)
	if c.served != servedBefore {
		s.stats.requestsServed.Add(uint64(c.served - servedBefore))
	}

	wouldBlock, werr := drainWritable(ev.fd, c.out)
	if werr != nil {
		s.closeConn(ev.fd, idx, c)
		return
	}

	if closeAfter && !c.outputPending() {
		if c.resp.assemblyFailed {
			s.stats.forcedCloses.Add(1)
		} else {
			s.stats.keepAliveCloses.Add(1)
		}
		s.closeConn(ev.fd, idx, c)
		return
	}

	// Adjust write-readiness interest: request EPOLLOUT only while bytes
	// remain queued, same as the C original's buffer.events toggling.
	_ = s.mux.modify(ev.fd, c.outputPending())
	_ = wouldBlock
}

func (s *Server) closeConn(fd int, idx int32, c *conn) {
	_ = s.mux.remove(fd)
	_ = unix.Close(fd)
	c.teardown()
	delete(s.fdToSlot, fd)
	s.pool.release(idx)
}

func (s *Server) shutdown() {
	for fd, idx := range s.fdToSlot {
		c := s.pool.get(idx)
		_ = s.mux.remove(fd)
		_ = unix.Close(fd)
		c.teardown()
		delete(s.fdToSlot, fd)
		s.pool.release(idx)
	}
	_ = s.mux.remove(s.listenFd)
	_ = unix.Close(s.listenFd)
	_ = s.mux.close()
}
