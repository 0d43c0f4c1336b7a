package xhttp

import "bytes"

// parseRequestHead parses one HTTP request head from head, which must be
// exactly the byte range spanning the request line through the blank
// line that terminates the header block (as located by findHeadEnd).
// It is a pure function: no I/O, no allocation beyond growing req's
// Headers slice, and every slice it writes into req borrows directly
// from head. The caller owns head's lifetime (it is a window into the
// connection's input buffer) and must not reuse req until the response
// for this request has been assembled.
func parseRequestHead(req *Request, head []byte) *ParseError {
	line, rest, ok := cutCRLF(head)
	if !ok {
		return errMissingBlankLine
	}

	method, urlTok, version, perr := parseRequestLine(line)
	if perr != nil {
		return perr
	}

	req.Method = parseMethod(method)
	if req.Method == MethodUnknown {
		return errInvalidMethod
	}
	req.MethodText = method
	req.URL = urlTok
	req.ProtoMajor, req.ProtoMinor = version.major, version.minor

	return parseHeaders(req, rest)
}

type httpVersion struct{ major, minor int }

// acceptedVersions enumerates exactly the literal tokens this parser
// accepts; no other token, including made-up minor versions, is valid.
var acceptedVersions = map[string]httpVersion{
	"HTTP/0.9": {0, 9},
	"HTTP/1.0": {1, 0},
	"HTTP/1.1": {1, 1},
	"HTTP/2.0": {2, 0},
	"HTTP/3.0": {3, 0},
	"HTTP/1":   {1, 0},
	"HTTP/2":   {2, 0},
	"HTTP/3":   {3, 0},
}

// parseRequestLine splits "METHOD SP URI SP VERSION" (CRLF already
// removed by the caller) into its three tokens and validates each.
func parseRequestLine(line []byte) (method, url []byte, version httpVersion, perr *ParseError) {
	if len(line) == 0 {
		return nil, nil, httpVersion{}, errEmptyMethod
	}

	sp := bytes.IndexByte(line, ' ')
	if sp < 0 {
		return nil, nil, httpVersion{}, errMissingURL
	}
	method = line[:sp]
	if len(method) == 0 {
		return nil, nil, httpVersion{}, errEmptyMethod
	}
	for _, c := range method {
		if c < 'A' || c > 'Z' {
			return nil, nil, httpVersion{}, errInvalidMethod
		}
	}

	rest := line[sp+1:]
	sp = bytes.IndexByte(rest, ' ')
	if sp < 0 {
		return nil, nil, httpVersion{}, errMissingVersion
	}
	url = rest[:sp]
	if len(url) == 0 {
		return nil, nil, httpVersion{}, errMissingURL
	}

	versionTok := rest[sp+1:]
	if len(versionTok) == 0 {
		return nil, nil, httpVersion{}, errMissingVersion
	}
	v, ok := acceptedVersions[string(versionTok)]
	if !ok {
		return nil, nil, httpVersion{}, errBadVersion
	}

	return method, url, v, nil
}

// parseHeaders parses the header block (everything after the request
// line, up to and including the terminating blank line) into req.Headers.
func parseHeaders(req *Request, buf []byte) *ParseError {
	for {
		line, rest, ok := cutCRLF(buf)
		if !ok {
			return errMissingBlankLine
		}
		if len(line) == 0 {
			// Blank line: end of headers.
			return nil
		}

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return errEmptyHeaderName
		}
		name := line[:colon]
		value := trimOWS(line[colon+1:])

		for _, c := range name {
			if c == ' ' || c == '\t' {
				return errMalformedHeader
			}
		}

		req.Headers = append(req.Headers, Field{Name: name, Value: value})
		buf = rest
	}
}

// cutCRLF splits buf at the first CRLF, returning the line before it and
// the remainder after it. ok is false if no CRLF is present.
func cutCRLF(buf []byte) (line, rest []byte, ok bool) {
	idx := bytes.Index(buf, crlf)
	if idx < 0 {
		return nil, nil, false
	}
	return buf[:idx], buf[idx+2:], true
}

var crlf = []byte("\r\n")
