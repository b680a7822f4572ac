package proxy

import "testing"

func TestWrapCachedResponseAddsStatusLine(t *testing.T) {
	got := wrapCachedResponse([]byte("<html>hi</html>"))
	want := "HTTP/1.0 200 OK\r\nContent-Type: text/html\r\n\r\n<html>hi</html>"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWrapCachedResponseKeepsFullResponses(t *testing.T) {
	in := "HTTP/1.0 200 OK\r\n\r\n<html>hi</html>"
	if got := wrapCachedResponse([]byte(in)); string(got) != in {
		t.Fatalf("got %q, want %q", got, in)
	}
}
