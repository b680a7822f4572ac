package proxy

import "bytes"

// Client-facing status lines. These exact bytes are the error contract
// observable by clients.
const (
	statusBadRequest    = "HTTP/1.1 400 Bad Request\r\n\r\n"
	statusBadGateway    = "HTTP/1.1 502 Bad Gateway\r\n\r\n"
	statusInternalError = "HTTP/1.1 500 Internal Server Error\r\n\r\n"
)

var (
	httpPrefix      = []byte("HTTP/")
	syntheticHeader = []byte("HTTP/1.0 200 OK\r\nContent-Type: text/html\r\n\r\n")
)

// wrapCachedResponse prepends a minimal status line and header pair when a
// cached entry holds a bare body with no HTTP status line of its own.
func wrapCachedResponse(b []byte) []byte {
	if bytes.HasPrefix(b, httpPrefix) {
		return b
	}
	out := make([]byte, 0, len(syntheticHeader)+len(b))
	out = append(out, syntheticHeader...)
	return append(out, b...)
}
