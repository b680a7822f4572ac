package testutil

import (
	"net"
	"sync"
	"testing"
	"time"
)

// Origin is a fake origin server for proxy tests. Every accepted connection
// reads one request, records it, writes the canned response and closes,
// signalling end-of-response through EOF the way the proxy expects.
type Origin struct {
	ln       net.Listener
	response []byte

	// ResponseDelay holds the canned response back; set it before the
	// first connection arrives.
	ResponseDelay time.Duration

	mu       sync.Mutex
	requests [][]byte
}

// StartOrigin listens on a loopback port and serves response to every
// connection until the test ends.
func StartOrigin(t *testing.T, response []byte) *Origin {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	o := &Origin{ln: ln, response: response}
	go o.loop()
	t.Cleanup(func() { _ = ln.Close() })

	return o
}

func (o *Origin) loop() {
	for {
		c, err := o.ln.Accept()
		if err != nil {
			return
		}
		go o.handle(c)
	}
}

func (o *Origin) handle(c net.Conn) {
	defer c.Close()

	buf := make([]byte, 8192)
	n, err := c.Read(buf)
	if err != nil {
		return
	}

	o.mu.Lock()
	o.requests = append(o.requests, append([]byte(nil), buf[:n]...))
	o.mu.Unlock()

	if o.ResponseDelay > 0 {
		time.Sleep(o.ResponseDelay)
	}
	_, _ = c.Write(o.response)
}

// Port returns the TCP port the origin listens on.
func (o *Origin) Port() int {
	return o.ln.Addr().(*net.TCPAddr).Port
}

// Connections returns how many requests the origin has received.
func (o *Origin) Connections() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.requests)
}

// LastRequest returns the bytes of the most recent request, or nil.
func (o *Origin) LastRequest() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.requests) == 0 {
		return nil
	}
	return o.requests[len(o.requests)-1]
}
