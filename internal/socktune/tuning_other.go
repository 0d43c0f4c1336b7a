//go:build !linux

package socktune

func applyPlatformOptions(fd int, cfg Config) {}

func applyListenerOptions(fd int, cfg Config) error { return nil }

func SetQuickAck(fd int) error { return nil }
