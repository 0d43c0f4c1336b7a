package xhttp

import (
	"strings"
	"testing"
)

func TestResponseSetHeaderAddOrReplace(t *testing.T) {
	var r Response
	r.reset()
	r.SetHeader([]byte("X-A"), []byte("1"))
	r.SetHeader([]byte("X-B"), []byte("2"))
	r.SetHeader([]byte("x-a"), []byte("3"))

	if len(r.headers) != 2 {
		t.Fatalf("len(headers) = %d, want 2", len(r.headers))
	}
	if v := string(r.headers[0].Value); v != "3" {
		t.Errorf("X-A value = %q, want 3 (replaced, case-insensitively)", v)
	}
}

func TestResponseRemoveHeader(t *testing.T) {
	var r Response
	r.reset()
	r.SetHeader([]byte("X-A"), []byte("1"))
	r.RemoveHeader([]byte("x-a"))
	if len(r.headers) != 0 {
		t.Fatalf("expected header to be removed, got %d remaining", len(r.headers))
	}
}

func defaultTestConfig() *Config {
	cfg := DefaultConfig()
	return &cfg
}

func TestResponseSerializeKeepAlive(t *testing.T) {
	var r Response
	r.reset()
	r.SetStatus(200)
	r.SetBody([]byte("hi"))

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	keepAlive := r.serialize(out, true, 0, 1, 100, cfg)
	if !keepAlive {
		t.Fatalf("expected keep-alive to remain open")
	}

	text := string(out.bytes())
	if !strings.HasPrefix(text, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("unexpected status line: %q", text)
	}
	if !strings.Contains(text, "Connection: Keep-Alive\r\n") {
		t.Errorf("expected keep-alive connection header, got %q", text)
	}
	if !strings.Contains(text, "Content-Length: 2\r\n") {
		t.Errorf("expected Content-Length: 2, got %q", text)
	}
	if !strings.HasSuffix(text, "\r\n\r\nhi") {
		t.Errorf("expected body to follow headers, got %q", text)
	}
}

func TestResponseSerializeNoConnectionHeaderClosesByDefault(t *testing.T) {
	var r Response
	r.reset()
	r.SetStatus(200)

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	keepAlive := r.serialize(out, false, 0, 1, 100, cfg)
	if keepAlive {
		t.Fatalf("a request with no Connection header must not keep the connection open")
	}
	if !strings.Contains(string(out.bytes()), "Connection: Close\r\n") {
		t.Errorf("expected close connection header")
	}
}

func TestResponseSerializeKeepAliveRequestCapReached(t *testing.T) {
	var r Response
	r.reset()
	r.SetStatus(200)

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	served := cfg.KeepAliveMaxRequests - 1
	keepAlive := r.serialize(out, true, served, 1, 100, cfg)
	if keepAlive {
		t.Fatalf("expected connection to close once the request cap is reached")
	}
	if !strings.Contains(string(out.bytes()), "Connection: Close\r\n") {
		t.Errorf("expected close connection header")
	}
}

func TestResponseSerializeBackPressure(t *testing.T) {
	var r Response
	r.reset()
	r.SetStatus(200)

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	// 70 live out of 100 capacity exceeds the 0.6 back-pressure fraction.
	keepAlive := r.serialize(out, true, 0, 70, 100, cfg)
	if keepAlive {
		t.Fatalf("expected back-pressure to force connection close")
	}
}

func TestResponseSerializeExplicitClose(t *testing.T) {
	var r Response
	r.reset()
	r.SetStatus(200)
	r.Close()

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	keepAlive := r.serialize(out, true, 0, 1, 100, cfg)
	if keepAlive {
		t.Fatalf("expected explicit Close to force connection close")
	}
}

func TestResponseSerializeHEADSuppressesBody(t *testing.T) {
	var r Response
	r.reset()
	r.wasHead = true
	r.SetStatus(200)
	r.SetBody([]byte("this body must not appear on the wire"))

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	r.serialize(out, true, 0, 1, 100, cfg)

	text := string(out.bytes())
	if strings.Contains(text, "this body") {
		t.Errorf("HEAD response must not include a body, got %q", text)
	}
	if !strings.Contains(text, "Content-Length: 37\r\n") {
		t.Errorf("HEAD response must still report Content-Length, got %q", text)
	}
}

func TestResponseSerializeAssemblyFailure(t *testing.T) {
	var r Response
	r.reset()
	r.assemblyFailed = true
	r.status = 400

	out := newConnBuffer()
	defer out.release()

	cfg := defaultTestConfig()
	keepAlive := r.serialize(out, true, 0, 1, 100, cfg)
	if keepAlive {
		t.Fatalf("an assembly failure must always close the connection")
	}
	if !strings.HasPrefix(string(out.bytes()), "HTTP/1.1 400 Bad Request\r\n") {
		t.Errorf("unexpected status line: %q", string(out.bytes()))
	}
}
