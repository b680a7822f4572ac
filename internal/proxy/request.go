package proxy

import (
	"bytes"
	"errors"
	"strings"
)

const crlf = "\r\n"

// ErrMalformedRequest reports a request line that does not split into
// exactly three whitespace-separated tokens.
var ErrMalformedRequest = errors.New("malformed request line")

// ParsedRequest is a client request split into its raw parts.
//
// Headers holds every line after the request line, duplicates and casing
// preserved. The reference behavior never looks for the blank line ending
// the header block, so Headers can include empty lines and body text; the
// upstream request builder relies on exactly that. Body is set only when a
// CRLFCRLF boundary exists in the raw bytes.
type ParsedRequest struct {
	Method  string
	Target  string
	Version string
	Headers []string
	Body    []byte
}

// ParseRequest splits raw client bytes on CRLF and extracts the request
// line, the header lines and the optional body.
func ParseRequest(raw []byte) (*ParsedRequest, error) {
	lines := strings.Split(string(raw), crlf)

	fields := strings.Fields(lines[0])
	if len(fields) != 3 {
		return nil, ErrMalformedRequest
	}

	req := &ParsedRequest{
		Method:  fields[0],
		Target:  fields[1],
		Version: fields[2],
		Headers: lines[1:],
	}

	if i := bytes.Index(raw, []byte(crlf+crlf)); i != -1 {
		req.Body = raw[i+len(crlf+crlf):]
	}

	return req, nil
}
