package proxy

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/hoardcache/hoard/internal/cache"
	"github.com/hoardcache/hoard/internal/metrics"
)

// Bounded label values for the request outcome metric.
const (
	outcomeHit           = "hit"
	outcomeMiss          = "miss"
	outcomeBadRequest    = "bad_request"
	outcomeDNSError      = "dns_error"
	outcomeUpstreamError = "upstream_error"
)

// Config collects the acceptor and dispatcher settings.
type Config struct {
	// UpstreamPort is the origin TCP port, 80 when zero.
	UpstreamPort int

	// DialTimeout bounds origin DNS lookup and TCP connect when non-zero.
	// The default is no timeout, matching the reference behavior.
	DialTimeout time.Duration

	// AcceptTimeout is the poll interval of the accept loop; shutdown is
	// observed within this bound. One second when zero.
	AcceptTimeout time.Duration

	// MaxConns caps concurrently handled client connections. Zero means
	// unlimited.
	MaxConns int64
}

// Server accepts client connections and dispatches each one to its own
// goroutine for a single request/response cycle. The cache store is the
// only state shared between connections.
type Server struct {
	cfg      Config
	cache    cache.Store
	upstream *Upstream
	metrics  *metrics.Metrics
	sem      *semaphore.Weighted
	pool     *bufferPool
	wg       sync.WaitGroup
}

// NewServer constructs a proxy server using store for response persistence.
// m may be nil to disable metrics.
func NewServer(cfg Config, store cache.Store, m *metrics.Metrics) *Server {
	if cfg.AcceptTimeout <= 0 {
		cfg.AcceptTimeout = time.Second
	}
	s := &Server{
		cfg:      cfg,
		cache:    store,
		upstream: NewUpstream(cfg.UpstreamPort, cfg.DialTimeout),
		metrics:  m,
		pool:     newBufferPool(readBufferSize),
	}
	if cfg.MaxConns > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConns)
	}
	return s
}

// Serve accepts connections on ln until ctx is canceled. Accept polls with
// a deadline so cancellation is observed between clients. However the loop
// ends, the listener is closed and in-flight dispatches run to completion.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return fmt.Errorf("listener %T does not support accept deadlines", ln)
	}

	defer s.drain()
	defer ln.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := tl.SetDeadline(time.Now().Add(s.cfg.AcceptTimeout)); err != nil {
			return fmt.Errorf("set accept deadline: %w", err)
		}

		conn, err := tl.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return fmt.Errorf("accept: %w", err)
		}

		if s.sem != nil {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				conn.Close()
				return nil
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if s.sem != nil {
				defer s.sem.Release(1)
			}
			s.handleConn(conn)
		}()
	}
}

// drain waits for in-flight connections; there is no forced cancellation.
func (s *Server) drain() {
	log.Debug().Msg("Waiting for in-flight connections")
	s.wg.Wait()
}

func (s *Server) count(outcome string) {
	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(outcome).Inc()
	}
}
