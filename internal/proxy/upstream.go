package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ErrUnresolvableHost reports a DNS lookup failure for the origin host.
var ErrUnresolvableHost = errors.New("unresolvable origin host")

// userAgent identifies the proxy on requests it forwards.
const userAgent = "hoard/1.0"

// Upstream opens one TCP connection per request to the resolved origin,
// sends a rewritten request and accumulates the response until the origin
// closes its write side. End-of-stream is the sole completion signal; no
// Content-Length or chunked framing is consulted. There is no retry and,
// unless DialTimeout is set, no deadline: a hung origin holds its worker.
type Upstream struct {
	port        int
	dialTimeout time.Duration
	pool        *bufferPool
}

// NewUpstream returns a client that connects to origins on port, or 80 when
// port is zero.
func NewUpstream(port int, dialTimeout time.Duration) *Upstream {
	if port == 0 {
		port = 80
	}
	return &Upstream{
		port:        port,
		dialTimeout: dialTimeout,
		pool:        newBufferPool(readBufferSize),
	}
}

// Fetch forwards req to the origin described by rt and returns the raw
// response bytes read until EOF. When a dial timeout is configured, DNS
// lookup and TCP connect share its budget.
func (u *Upstream) Fetch(rt ResolvedTarget, req *ParsedRequest) ([]byte, error) {
	ctx := context.Background()
	if u.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.dialTimeout)
		defer cancel()
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, rt.Host)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("lookup %q: %w", rt.Host, ErrUnresolvableHost)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addrs[0], strconv.Itoa(u.port)))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rt.Host, err)
	}
	defer conn.Close()

	if _, err := conn.Write(buildRequest(rt, req)); err != nil {
		return nil, fmt.Errorf("send to %s: %w", rt.Host, err)
	}

	var resp []byte
	buf := u.pool.Get()
	defer u.pool.Put(buf)
	for {
		n, err := conn.Read(buf)
		resp = append(resp, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return resp, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read from %s: %w", rt.Host, err)
		}
	}
}

// buildRequest rewrites the client request for the origin: a request line
// with the resolved path, every client line after line 0 minus
// connection-management headers, the mandatory Host / Connection: close /
// User-Agent trio, and the POST body when one was present.
func buildRequest(rt ResolvedTarget, req *ParsedRequest) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s %s%s", req.Method, rt.Path, req.Version, crlf)

	for _, h := range req.Headers {
		l := strings.ToLower(h)
		// The proxy does not implement the connection lifecycle these
		// headers negotiate.
		if strings.HasPrefix(l, "proxy-connection") || strings.HasPrefix(l, "connection") {
			continue
		}
		b.WriteString(h)
		b.WriteString(crlf)
	}

	fmt.Fprintf(&b, "Host: %s%s", rt.Host, crlf)
	b.WriteString("Connection: close" + crlf)
	b.WriteString("User-Agent: " + userAgent + crlf)
	b.WriteString(crlf)

	if strings.EqualFold(req.Method, "POST") && req.Body != nil {
		b.Write(req.Body)
	}

	return b.Bytes()
}
