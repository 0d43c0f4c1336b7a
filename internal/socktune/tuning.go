// Package socktune applies performance-oriented socket options to the
// raw file descriptors the event loop owns directly; there is no
// net.Conn wrapper here, since the epoll-driven loop creates and accepts
// sockets itself via golang.org/x/sys/unix.
package socktune

import "golang.org/x/sys/unix"

// Config mirrors the tuning knobs a caller may want control over. A zero
// value leaves the corresponding option unset; DefaultConfig returns the
// recommended values.
type Config struct {
	NoDelay     bool
	RecvBuffer  int
	SendBuffer  int
	QuickAck    bool
	DeferAccept bool
	KeepAlive   bool
}

func DefaultConfig() Config {
	return Config{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		QuickAck:    true,
		DeferAccept: true,
		KeepAlive:   true,
	}
}

// Apply tunes a freshly accepted connection fd. Only TCP_NODELAY failing
// is treated as an error worth surfacing; buffer sizes and keepalive are
// best-effort.
func Apply(fd int, cfg Config) error {
	if cfg.NoDelay {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			return err
		}
	}
	if cfg.RecvBuffer > 0 {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, cfg.RecvBuffer)
	}
	if cfg.SendBuffer > 0 {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, cfg.SendBuffer)
	}
	if cfg.KeepAlive {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	}
	applyPlatformOptions(fd, cfg)
	return nil
}

// ApplyListener tunes the listening socket before the first accept.
func ApplyListener(fd int, cfg Config) error {
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	return applyListenerOptions(fd, cfg)
}
