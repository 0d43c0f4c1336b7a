package xhttp

import (
	"strings"
	"testing"
)

func newTestConn() *conn {
	c := &conn{}
	c.resetForAccept(-1)
	return c
}

func TestConnConsumeReadySingleRequest(t *testing.T) {
	c := newTestConn()
	defer c.teardown()

	req := "GET / HTTP/1.1\r\nHost: a\r\nConnection: Keep-Alive\r\n\r\n"
	copy(c.in.writableSlice(), req)
	c.in.commit(len(req))

	var gotMethod Method
	cb := func(r *Request, resp *Response) {
		gotMethod = r.Method
		resp.SetStatus(200)
		resp.SetBody([]byte("ok"))
	}

	cfg := defaultTestConfig()
	pool := newConnPool(10)

	closeAfter := c.consumeReady(cb, pool, cfg)
	if closeAfter {
		t.Fatalf("a single ordinary request should not force a close")
	}
	if gotMethod != MethodGET {
		t.Errorf("callback saw Method = %v, want GET", gotMethod)
	}
	if c.served != 1 {
		t.Errorf("served = %d, want 1", c.served)
	}
	if !strings.Contains(string(c.out.bytes()), "HTTP/1.1 200 OK") {
		t.Errorf("expected a 200 response in the output buffer, got %q", c.out.bytes())
	}
	if c.in.used != 0 {
		t.Errorf("input buffer should be fully consumed, used = %d", c.in.used)
	}
}

func TestConnConsumeReadyPipelinedRequests(t *testing.T) {
	c := newTestConn()
	defer c.teardown()

	reqs := strings.Repeat("GET / HTTP/1.1\r\nConnection: Keep-Alive\r\n\r\n", 3)
	copy(c.in.writableSlice(), reqs)
	c.in.commit(len(reqs))

	calls := 0
	cb := func(r *Request, resp *Response) {
		calls++
		resp.SetStatus(200)
	}

	cfg := defaultTestConfig()
	pool := newConnPool(10)

	c.consumeReady(cb, pool, cfg)
	if calls != 3 {
		t.Fatalf("expected 3 pipelined requests to be dispatched, got %d", calls)
	}
	if strings.Count(string(c.out.bytes()), "HTTP/1.1 200") != 3 {
		t.Errorf("expected 3 status lines in output, got %q", c.out.bytes())
	}
}

func TestConnConsumeReadyIncompleteRequestWaits(t *testing.T) {
	c := newTestConn()
	defer c.teardown()

	partial := "GET / HTTP/1.1\r\nHost: a\r\n"
	copy(c.in.writableSlice(), partial)
	c.in.commit(len(partial))

	called := false
	cb := func(r *Request, resp *Response) { called = true }

	cfg := defaultTestConfig()
	pool := newConnPool(10)

	closeAfter := c.consumeReady(cb, pool, cfg)
	if closeAfter {
		t.Fatalf("an incomplete head should not trigger a close")
	}
	if called {
		t.Fatalf("callback should not run before the head is complete")
	}
	if c.state != stateReadingHead {
		t.Errorf("state = %v, want stateReadingHead", c.state)
	}
}

func TestConnConsumeReadyBodyAwaited(t *testing.T) {
	c := newTestConn()
	defer c.teardown()

	head := "POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\nabc"
	copy(c.in.writableSlice(), head)
	c.in.commit(len(head))

	called := false
	cb := func(r *Request, resp *Response) { called = true; resp.SetStatus(200) }

	cfg := defaultTestConfig()
	pool := newConnPool(10)
	c.consumeReady(cb, pool, cfg)
	if called {
		t.Fatalf("callback should not run until the full body arrives")
	}
	if c.state != stateReadingBody {
		t.Errorf("state = %v, want stateReadingBody", c.state)
	}

	rest := "de"
	copy(c.in.writableSlice(), rest)
	c.in.commit(len(rest))

	c.consumeReady(cb, pool, cfg)
	if !called {
		t.Fatalf("callback should run once the full body has arrived")
	}
}

func TestConnConsumeReadyProtocolErrorClosesConnection(t *testing.T) {
	c := newTestConn()
	defer c.teardown()

	bad := "BOGUS / HTTP/1.1\r\n\r\n"
	copy(c.in.writableSlice(), bad)
	c.in.commit(len(bad))

	cb := func(r *Request, resp *Response) {
		t.Fatalf("callback must not run for an invalid request")
	}

	cfg := defaultTestConfig()
	pool := newConnPool(10)

	closeAfter := c.consumeReady(cb, pool, cfg)
	if !closeAfter {
		t.Fatalf("a protocol error must force the connection to close")
	}
	out := string(c.out.bytes())
	if !strings.Contains(out, "HTTP/1.1 400") {
		t.Errorf("expected a 400 response, got %q", out)
	}
	if !strings.Contains(out, "Connection: Close\r\n") {
		t.Errorf("expected the connection to be marked close, got %q", out)
	}
	if !strings.HasSuffix(out, "Unknown method\n") {
		t.Errorf("expected the parser's message as the body, got %q", out)
	}
}

func TestConnConsumeReadyKeepAliveRequestCap(t *testing.T) {
	c := newTestConn()
	defer c.teardown()

	cfg := defaultTestConfig()
	pool := newConnPool(10)
	cb := func(r *Request, resp *Response) { resp.SetStatus(200) }

	req := "GET / HTTP/1.1\r\nConnection: Keep-Alive\r\n\r\n"
	for i := 0; i < cfg.KeepAliveMaxRequests; i++ {
		c.in.reset()
		copy(c.in.writableSlice(), req)
		c.in.commit(len(req))
		c.out.reset()
		closeAfter := c.consumeReady(cb, pool, cfg)
		if i < cfg.KeepAliveMaxRequests-1 {
			if closeAfter {
				t.Fatalf("request %d: connection closed too early", i+1)
			}
		} else {
			if !closeAfter {
				t.Fatalf("request %d: expected the keep-alive cap to force a close", i+1)
			}
		}
	}
}
