package proxy

import (
	"net/url"
	"strings"
)

// ResolvedTarget locates the origin for a request target. The scheme is
// always implied http; there is no TLS path in this proxy.
type ResolvedTarget struct {
	Host string
	Path string
}

// ResolveTarget derives the origin authority and path from a raw request
// target. A single leading "/" (prepended by some clients) is stripped, a
// missing scheme defaults to http, and an empty path becomes "/".
//
// Malformed authorities are not rejected here: an empty or bogus host
// surfaces as a DNS failure downstream.
func ResolveTarget(target string) ResolvedTarget {
	target = strings.TrimPrefix(target, "/")
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	rt := ResolvedTarget{Path: "/"}
	u, err := url.Parse(target)
	if err != nil {
		return rt
	}
	rt.Host = u.Host
	if u.Path != "" {
		rt.Path = u.Path
	}
	return rt
}
