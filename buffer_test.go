package xhttp

import "testing"

func TestConnBufferGrowsOnLowHeadroom(t *testing.T) {
	b := newConnBuffer()
	defer b.release()

	b.ensureHeadroom()
	if b.cap() < minBufferSize {
		t.Fatalf("cap() = %d, want at least %d", b.cap(), minBufferSize)
	}

	b.used = b.cap() - growHeadroom + 1
	prevCap := b.cap()
	b.ensureHeadroom()
	if b.cap() <= prevCap {
		t.Fatalf("expected buffer to grow past %d, got %d", prevCap, b.cap())
	}
}

func TestConnBufferCommitAndBytes(t *testing.T) {
	b := newConnBuffer()
	defer b.release()

	slice := b.writableSlice()
	n := copy(slice, "hello")
	b.commit(n)

	if string(b.bytes()) != "hello" {
		t.Errorf("bytes() = %q, want %q", b.bytes(), "hello")
	}
}

func TestConnBufferCompact(t *testing.T) {
	b := newConnBuffer()
	defer b.release()

	slice := b.writableSlice()
	n := copy(slice, "abcdef")
	b.commit(n)

	b.compact(3)
	if string(b.bytes()) != "def" {
		t.Errorf("bytes() after compact(3) = %q, want %q", b.bytes(), "def")
	}

	b.compact(100)
	if b.used != 0 {
		t.Errorf("compact(n >= used) should empty the buffer, used = %d", b.used)
	}
}

func TestConnBufferResetKeepsCapacity(t *testing.T) {
	b := newConnBuffer()
	defer b.release()

	b.commit(copy(b.writableSlice(), "data"))
	prevCap := b.cap()
	b.reset()
	if b.used != 0 {
		t.Errorf("used = %d after reset, want 0", b.used)
	}
	if b.cap() != prevCap {
		t.Errorf("reset should not shrink capacity, cap = %d, want %d", b.cap(), prevCap)
	}
}
