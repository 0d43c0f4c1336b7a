//go:build linux

package socktune

import "golang.org/x/sys/unix"

// applyPlatformOptions sets Linux-only per-connection options. QuickAck
// is not persistent; the kernel clears it after the next ACK, so this is
// a best-effort initial nudge rather than a lasting guarantee.
func applyPlatformOptions(fd int, cfg Config) {
	if cfg.QuickAck {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, 10000)
}

// applyListenerOptions sets Linux-only listener options, most notably
// TCP_DEFER_ACCEPT so the server isn't woken until a peer has actually
// sent data.
func applyListenerOptions(fd int, cfg Config) error {
	var lastErr error
	if cfg.DeferAccept {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_DEFER_ACCEPT, 5); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// SetQuickAck re-arms TCP_QUICKACK; callers that want it to stick across
// reads must call this after each read, since the kernel clears it once
// an ACK goes out.
func SetQuickAck(fd int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
}
