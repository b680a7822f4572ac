package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // Intentionally exposed on debug port.
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/hoardcache/hoard/internal/cache"
	"github.com/hoardcache/hoard/internal/config"
	"github.com/hoardcache/hoard/internal/metrics"
	"github.com/hoardcache/hoard/internal/proxy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   = pflag.StringP("config", "c", "", "Path to TOML config file. Empty uses built-in defaults.")
		port         = pflag.Int("port", 0, "Listen port (overrides config; default 8888).")
		cacheBackend = pflag.String("cache", "", "Cache backend: dir | sqlite | memory (overrides config).")
		cacheDir     = pflag.String("cache-dir", "", "Directory for the dir cache backend (overrides config).")
		cacheDB      = pflag.String("cache-db", "", "SQLite file for the sqlite cache backend (overrides config).")
		debugListen  = pflag.String("debug-listen", "", "Debug HTTP listen address exposing /debug/pprof and /metrics (e.g. 127.0.0.1:6060). Empty disables.")
		maxConns     = pflag.Int64("max-conns", 0, "Maximum concurrently handled client connections. 0 means unlimited.")
		dialTimeout  = pflag.Duration("dial-timeout", 0, "Timeout for origin DNS lookup and TCP connect. 0 disables.")
		logFile      = pflag.String("log-file", "", "Log file to use in addition to stdout.")
		verbose      = pflag.Bool("vv", false, "Verbosity: trace logging.")
	)
	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	if pflag.NArg() != 1 {
		return errors.New("usage: hoard [flags] <bind-address>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	cfg.Server.Host = pflag.Arg(0)
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *cacheBackend != "" {
		cfg.Cache.Backend = *cacheBackend
	}
	if *cacheDir != "" {
		cfg.Cache.Dir = *cacheDir
	}
	if *cacheDB != "" {
		cfg.Cache.DB = *cacheDB
	}
	if *debugListen != "" {
		cfg.Debug.Listen = *debugListen
	}
	if *maxConns != 0 {
		cfg.Server.MaxConns = *maxConns
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *verbose {
		cfg.Log.Level = "trace"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if *dialTimeout < 0 {
		return errors.New("--dial-timeout must be non-negative")
	}
	originDialTimeout := resolveDialTimeout(*dialTimeout, cfg.Server.DialTimeoutSeconds)

	if err := setupLogging(cfg.Log); err != nil {
		return err
	}

	store, err := newStore(cfg.Cache)
	if err != nil {
		return err
	}

	m := metrics.New()

	g, ctx := errgroup.WithContext(context.Background())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Debug.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
		mux.Handle("/debug/", http.DefaultServeMux) // pprof registers itself there

		debugSrv := &http.Server{Handler: mux} //nolint:gosec // Not concerned about timeouts on debug port.
		lc := net.ListenConfig{}
		debugLn, err := lc.Listen(ctx, "tcp", cfg.Debug.Listen)
		if err != nil {
			return fmt.Errorf("debug listen: %w", err)
		}
		context.AfterFunc(ctx, func() {
			_ = debugSrv.Close()
			_ = debugLn.Close()
		})

		g.Go(func() error {
			if err := debugSrv.Serve(debugLn); err != nil {
				return fmt.Errorf("debug serve: %w", err)
			}
			return nil
		})
		log.Info().Str("addr", cfg.Debug.Listen).Msg("Debug server listening")
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := proxy.NewServer(proxy.Config{
		UpstreamPort: cfg.Server.UpstreamPort,
		DialTimeout:  originDialTimeout,
		MaxConns:     cfg.Server.MaxConns,
	}, store, m)

	g.Go(func() error {
		if err := srv.Serve(ctx, ln); err != nil {
			return fmt.Errorf("proxy serve: %w", err)
		}
		return nil
	})
	log.Info().Str("addr", cfg.Server.Addr()).Str("cache", cfg.Cache.Backend).Msg("Proxy listening")

	err = g.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	log.Info().Msg("Shutting down")
	return err
}

// resolveDialTimeout prefers the flag over the config file. The flag is used
// at full resolution so sub-second timeouts survive.
func resolveDialTimeout(flagValue time.Duration, configSeconds int) time.Duration {
	if flagValue != 0 {
		return flagValue
	}
	return time.Duration(configSeconds) * time.Second
}

// setupLogging configures the global zerolog logger: console output on
// stdout plus an optional log file, at the configured level.
func setupLogging(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	outputs := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout}}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		outputs = append(outputs, f)
	}

	log.Logger = log.Level(level).Output(zerolog.MultiLevelWriter(outputs...))
	return nil
}

func newStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case config.BackendDir:
		return cache.NewDirStore(cfg.Dir)
	case config.BackendSQLite:
		return cache.NewSQLiteStore(cfg.DB)
	case config.BackendMemory:
		return cache.NewMemStore(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
