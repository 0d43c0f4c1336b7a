package xhttp

import "strconv"

// Response is the callback-facing response assembler. A callback builds
// up status, headers and body through this type; once the callback
// returns, the connection serializes it onto the wire. Header storage is
// add-or-replace by name (case-insensitive).
type Response struct {
	status  int
	headers []Field
	body    []byte

	// explicitClose is set by Close and forces the connection closed
	// after this response regardless of the keep-alive policy.
	explicitClose bool

	// assemblyFailed is sticky: once set, the connection is always closed
	// afterward. When SetStatus sets it for an invalid code, serialize
	// replaces the response with a canned error body; the connection also
	// sets it after writing the error response for a parse failure.
	assemblyFailed bool

	wasHead bool
}

func (r *Response) reset() {
	r.status = 200
	r.headers = r.headers[:0]
	r.body = nil
	r.explicitClose = false
	r.assemblyFailed = false
	r.wasHead = false
}

// SetStatus sets the response status code. Codes outside [100,599] mark
// the response as failed and force a canned 500.
func (r *Response) SetStatus(code int) {
	if code < 100 || code > 599 {
		r.assemblyFailed = true
		r.status = 500
		return
	}
	r.status = code
}

// SetHeader adds name/value, replacing any existing header with the same
// name (case-insensitive), mirroring the public header_add/header_set
// contract.
func (r *Response) SetHeader(name, value []byte) {
	for i := range r.headers {
		if HeaderEqualFold(r.headers[i].Name, name) {
			r.headers[i].Value = value
			return
		}
	}
	r.headers = append(r.headers, Field{Name: name, Value: value})
}

// RemoveHeader deletes any header matching name, if present.
func (r *Response) RemoveHeader(name []byte) {
	for i := range r.headers {
		if HeaderEqualFold(r.headers[i].Name, name) {
			r.headers = append(r.headers[:i], r.headers[i+1:]...)
			return
		}
	}
}

// SetBody sets the response body. body must remain valid until the
// callback returns; it is copied into the connection's output buffer
// during serialization.
func (r *Response) SetBody(body []byte) {
	r.body = body
}

// Close forces this connection to close after the response is sent,
// overriding the keep-alive policy.
func (r *Response) Close() {
	r.explicitClose = true
}

var (
	headerConnection     = []byte("Connection")
	headerContentLenResp = []byte("Content-Length")
	valKeepAlive         = []byte("Keep-Alive")
	valClose             = []byte("Close")
)

// cannedBody returns the fixed plain-text body used for assembly
// failures (an invalid status code from the callback), so a broken
// response never reaches the wire as-is.
func cannedBody(status int) []byte {
	return []byte(reasonPhrase(status) + "\n")
}

// requestWantsKeepAlive reports the base keep-alive decision carried by
// the request itself, before the served-count and back-pressure
// thresholds get a chance to demote it. Header values are already
// trimmed of surrounding OWS by the parser, so the comparison is exact:
// "Keep-Alive" votes to stay open, anything else (including an absent
// header) votes to close.
func requestWantsKeepAlive(req *Request) bool {
	return string(req.HeaderString("Connection")) == "Keep-Alive"
}

// serialize renders r onto out, deciding the final keep-alive/close
// outcome along the way. requestKeepAlive is the base decision derived
// from the request's Connection header; served is the number of
// requests already completed on this connection (before this one);
// poolLive and poolCapacity feed the back-pressure half of the policy.
func (r *Response) serialize(out *connBuffer, requestKeepAlive bool, served int, poolLive, poolCapacity int, cfg *Config) (keepAlive bool) {
	if r.assemblyFailed {
		r.headers = r.headers[:0]
		r.body = cannedBody(r.status)
		r.explicitClose = true
	}

	keepAlive = requestKeepAlive &&
		!r.explicitClose &&
		served+1 < cfg.KeepAliveMaxRequests &&
		float64(poolLive) <= cfg.BackPressureFraction*float64(poolCapacity)

	r.RemoveHeader(headerConnection)
	r.RemoveHeader(headerContentLenResp)
	if keepAlive {
		r.SetHeader(headerConnection, valKeepAlive)
	} else {
		r.SetHeader(headerConnection, valClose)
	}
	r.SetHeader(headerContentLenResp, []byte(strconv.Itoa(len(r.body))))

	writeStatusLine(out, r.status)
	for i := range r.headers {
		writeHeaderLine(out, r.headers[i].Name, r.headers[i].Value)
	}
	writeCRLF(out)

	if !r.wasHead {
		appendToBuffer(out, r.body)
	}

	return keepAlive
}

func writeStatusLine(out *connBuffer, status int) {
	appendToBuffer(out, []byte("HTTP/1.1 "))
	appendToBuffer(out, []byte(strconv.Itoa(status)))
	appendToBuffer(out, []byte(" "))
	appendToBuffer(out, []byte(reasonPhrase(status)))
	writeCRLF(out)
}

func writeHeaderLine(out *connBuffer, name, value []byte) {
	appendToBuffer(out, name)
	appendToBuffer(out, []byte(": "))
	appendToBuffer(out, value)
	writeCRLF(out)
}

func writeCRLF(out *connBuffer) {
	appendToBuffer(out, crlf)
}

// appendToBuffer copies p into out, growing as necessary. Unlike
// connBuffer's read path (which hands a writable slice to a syscall and
// grows only a little ahead via ensureHeadroom), the write path knows
// exactly how many bytes it needs and can grow straight to that size.
func appendToBuffer(out *connBuffer, p []byte) {
	if out.headroom() < len(p) {
		newCap := cap(out.bb.B) * 2
		if newCap < minBufferSize {
			newCap = minBufferSize
		}
		for newCap-out.used < len(p) {
			newCap *= 2
		}
		grown := make([]byte, out.used, newCap)
		copy(grown, out.bb.B[:out.used])
		out.bb.B = grown
	}
	n := copy(out.bb.B[out.used:cap(out.bb.B)], p)
	out.used += n
}
