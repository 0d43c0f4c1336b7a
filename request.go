package xhttp

// Request is a read-only view of one HTTP request head. Every byte slice
// it exposes borrows directly from the owning connection's input buffer
// and is valid only for the duration of the callback invocation that
// receives it — do not retain a Request or any of its slices past the
// callback's return.
type Request struct {
	Method     Method
	MethodText []byte
	URL        []byte
	ProtoMajor int
	ProtoMinor int
	Headers    []Field

	// Body holds the request body, sized by Content-Length. It is a
	// sub-slice of the same input buffer the head was parsed from.
	Body []byte

	// wasHead records that the wire method was HEAD before it was
	// coerced to MethodGET for dispatch, so the body can be suppressed
	// at serialization time while the callback still sees a GET.
	wasHead bool
}

// Header returns the value of the first header matching name
// (case-insensitive), or nil if absent.
func (r *Request) Header(name []byte) []byte {
	for i := range r.Headers {
		if HeaderEqualFold(r.Headers[i].Name, name) {
			return r.Headers[i].Value
		}
	}
	return nil
}

// HeaderString is a convenience wrapper around Header for string names.
func (r *Request) HeaderString(name string) []byte {
	return r.Header([]byte(name))
}

// IsHead reports whether the wire request method was HEAD, regardless of
// the coercion to GET performed before the callback runs.
func (r *Request) IsHead() bool {
	return r.wasHead
}

// reset clears a Request for reuse across pipelined requests on the same
// connection. Slices are dropped (not zeroed) since they point into a
// buffer that is about to be reused or compacted anyway.
func (r *Request) reset() {
	r.Method = MethodUnknown
	r.MethodText = nil
	r.URL = nil
	r.ProtoMajor = 0
	r.ProtoMinor = 0
	r.Headers = r.Headers[:0]
	r.Body = nil
	r.wasHead = false
}
