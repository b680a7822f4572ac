package proxy

import (
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hoardcache/hoard/internal/cache"
)

// handleConn runs one request/response cycle for an accepted client
// connection: parse, resolve, cache lookup, serve from cache or forward and
// cache, reply, close. Every path ends with the client socket closed.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	logger := log.With().Str("client", conn.RemoteAddr().String()).Logger()
	logger.Debug().Msg("Connection accepted")

	if s.metrics != nil {
		s.metrics.ConnectionsInFlight.Inc()
		defer s.metrics.ConnectionsInFlight.Dec()
	}

	buf := s.pool.Get()
	defer s.pool.Put(buf)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		logger.Debug().Err(err).Msg("No request received")
		return
	}
	raw := make([]byte, n)
	copy(raw, buf[:n])

	req, err := ParseRequest(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("Rejecting malformed request")
		s.count(outcomeBadRequest)
		io.WriteString(conn, statusBadRequest)
		return
	}

	logger = logger.With().Str("method", req.Method).Str("target", req.Target).Logger()
	logger.Debug().Msg("Request received")

	rt := ResolveTarget(req.Target)
	logger.Debug().Str("host", rt.Host).Str("path", rt.Path).Msg("Resolved target")

	// The key derives from the original target, not the resolved form.
	key := cache.Key(req.Target)
	isGet := strings.EqualFold(req.Method, "GET")

	if isGet {
		entry, ok, err := s.cache.Get(key)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Cache lookup failed")
		} else if ok {
			logger.Debug().Str("key", key).Msg("Cache hit")
			s.count(outcomeHit)
			if _, err := conn.Write(wrapCachedResponse(entry)); err != nil {
				logger.Debug().Err(err).Msg("Error writing cached response")
			}
			return
		}
	}

	start := time.Now()
	resp, err := s.upstream.Fetch(rt, req)
	if err != nil {
		if errors.Is(err, ErrUnresolvableHost) {
			logger.Warn().Err(err).Msg("DNS resolution failed")
			s.count(outcomeDNSError)
			io.WriteString(conn, statusBadGateway)
			return
		}
		logger.Error().Err(err).Msg("Forwarding failed")
		s.count(outcomeUpstreamError)
		io.WriteString(conn, statusInternalError)
		return
	}
	if s.metrics != nil {
		s.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	}

	if isGet {
		// A failed write never blocks delivery of the fetched response.
		if err := s.cache.Put(key, resp); err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Cache write failed")
		} else {
			logger.Debug().Str("key", key).Int("bytes", len(resp)).Msg("Cache write")
		}
	}

	s.count(outcomeMiss)
	if _, err := conn.Write(resp); err != nil {
		logger.Debug().Err(err).Msg("Error writing response")
	}
}
