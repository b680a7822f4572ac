package proxy

// Package proxy implements the listener-side of the caching forward proxy.
//
// It contains the accept loop, the per-connection dispatcher, the raw
// HTTP/1.x request parser, target resolution and the upstream client that
// forwards requests to origins. Each accepted connection carries exactly
// one request/response cycle and is then closed.
