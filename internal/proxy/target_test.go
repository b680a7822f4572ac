package proxy

import "testing"

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		target string
		host   string
		path   string
	}{
		{"http://example.test/a.html", "example.test", "/a.html"},
		// some clients prepend a slash to the target
		{"/http://example.test/a.html", "example.test", "/a.html"},
		// missing scheme defaults to http
		{"example.test/a.html", "example.test", "/a.html"},
		{"example.test", "example.test", "/"},
		{"http://example.test", "example.test", "/"},
		{"http://example.test:8080/x", "example.test:8080", "/x"},
		// the query string is not part of the rewritten path
		{"http://example.test/a.html?q=1", "example.test", "/a.html"},
	}

	for _, tt := range tests {
		rt := ResolveTarget(tt.target)
		if rt.Host != tt.host || rt.Path != tt.path {
			t.Errorf("ResolveTarget(%q) = {%q %q}, want {%q %q}",
				tt.target, rt.Host, rt.Path, tt.host, tt.path)
		}
	}
}
