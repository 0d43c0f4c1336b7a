package xhttp

// connState tracks where a connection is in the request/response cycle.
// Transitions: readingHead -> readingBody -> readingHead (pipelined) or
// closing. There is no separate draining state: queued output is tracked
// by the output buffer itself (outputPending), and further pipelined
// requests are parsed while it drains until backPressured stops them.
type connState int

const (
	stateIdle connState = iota
	stateReadingHead
	stateReadingBody
	stateClosing
)

// conn is one pooled connection slot, reused across its lifetime, so
// every field here must be fully reinitialized by resetForAccept before
// a slot is handed to a new file descriptor.
type conn struct {
	fd    int
	state connState

	in  *connBuffer
	out *connBuffer

	// scanFrom marks how many bytes of in.bytes() have already been
	// searched for CRLFCRLF and found not to contain it; findHeadEnd
	// uses it to avoid rescanning on every read.
	scanFrom int
	headEnd  int
	bodyLen  int64

	req  Request
	resp Response

	served           int
	closeWhenDrained bool
}

func (c *conn) resetForAccept(fd int) {
	c.fd = fd
	c.state = stateReadingHead
	if c.in == nil {
		c.in = newConnBuffer()
		c.out = newConnBuffer()
	} else {
		c.in.reset()
		c.out.reset()
	}
	c.scanFrom = 0
	c.headEnd = 0
	c.bodyLen = 0
	c.served = 0
	c.closeWhenDrained = false
	c.req.reset()
	c.resp.reset()
}

func (c *conn) teardown() {
	if c.in != nil {
		c.in.release()
		c.out.release()
		c.in = nil
		c.out = nil
	}
}

// outputPending reports whether bytes are queued to write.
func (c *conn) outputPending() bool {
	return c.out.used > 0
}

// backPressured reports whether the output buffer has grown large enough
// that the connection should stop pipelining further requests until the
// peer drains it, preventing unbounded buffering of responses the peer
// isn't reading.
func (c *conn) backPressured(cfg *Config) bool {
	return c.out.used >= cfg.MaxOutputBuffered
}

// consumeReady runs the parse/dispatch/serialize loop for as long as a
// full request is already available in c.in and the connection isn't
// closing or back-pressured. cb is the application callback. pool and
// cfg feed the keep-alive policy. It returns true if the connection
// should be closed once any pending output has drained.
func (c *conn) consumeReady(cb Callback, pool *connPool, cfg *Config) bool {
	for {
		if c.state == stateClosing {
			return true
		}
		if c.backPressured(cfg) {
			return false
		}

		if c.state == stateReadingHead {
			downloaded := c.in.used - c.scanFrom
			end, found := findHeadEnd(c.in.bytes(), c.in.used, downloaded)
			if !found {
				c.scanFrom = c.in.used
				if c.in.used >= cfg.MaxHeadSize {
					c.failAndClose(errHeadTooLarge, cfg)
					return true
				}
				return false
			}
			if end > cfg.MaxHeadSize {
				c.failAndClose(errHeadTooLarge, cfg)
				return true
			}

			perr := parseRequestHead(&c.req, c.in.bytes()[:end])
			if perr != nil {
				c.failAndClose(perr, cfg)
				return true
			}
			cl, perr := contentLength(c.req.Headers)
			if perr != nil {
				c.failAndClose(perr, cfg)
				return true
			}
			c.headEnd = end
			c.bodyLen = cl
			c.state = stateReadingBody
		}

		if c.state == stateReadingBody {
			have := c.in.used - c.headEnd
			if int64(have) < c.bodyLen {
				return false
			}

			c.req.Body = c.in.bytes()[c.headEnd : c.headEnd+int(c.bodyLen)]
			wasHead := c.req.Method == MethodHEAD
			c.req.wasHead = wasHead
			if wasHead {
				c.req.Method = MethodGET
			}

			requestKeepAlive := requestWantsKeepAlive(&c.req)

			c.resp.reset()
			c.resp.wasHead = wasHead
			cb(&c.req, &c.resp)

			keepAlive := c.resp.serialize(c.out, requestKeepAlive, c.served, pool.live(), pool.capacity, cfg)

			consumed := c.headEnd + int(c.bodyLen)
			c.in.compact(consumed)
			c.scanFrom = 0
			c.headEnd = 0
			c.bodyLen = 0
			c.req.reset()
			c.served++

			if !keepAlive {
				c.closeWhenDrained = true
				c.state = stateClosing
				return true
			}
			c.state = stateReadingHead
		}
	}
}

// failAndClose replaces any pending response with a plain-text body
// carrying perr's message and marks the connection to close once it
// drains. Used both for protocol violations (4xx/431) and internal
// allocation failures (5xx) — perr.Internal tracks which, though the
// distinction is already baked into perr.Status.
func (c *conn) failAndClose(perr *ParseError, cfg *Config) {
	status := perr.Status
	if perr.Internal && status < 500 {
		status = 500
	}

	c.resp.reset()
	c.resp.status = status
	c.resp.body = []byte(perr.Message + "\n")
	c.resp.explicitClose = true
	c.resp.serialize(c.out, false, c.served, 0, 1, cfg)
	c.resp.assemblyFailed = true
	c.state = stateClosing
	c.closeWhenDrained = true
}
