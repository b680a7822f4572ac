// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Cache backend names accepted in [cache] backend.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the proxy runtime configuration. Nothing here changes wire
// behavior: status lines, cache key derivation and the default origin port
// are fixed.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
	Debug  DebugConfig  `toml:"debug"`
}

// ServerConfig holds listener and forwarding settings.
type ServerConfig struct {
	Host string `toml:"host"` // bind address, usually given as the positional CLI argument
	Port int    `toml:"port"` // 0 means "use default" (8888)

	// MaxConns caps concurrently handled connections; 0 means unlimited,
	// which is the reference behavior.
	MaxConns int64 `toml:"max_conns"`

	// UpstreamPort is the origin TCP port; 0 means the default (80).
	UpstreamPort int `toml:"upstream_port"`

	// DialTimeoutSeconds bounds origin connects; 0 disables the timeout.
	DialTimeoutSeconds int `toml:"dial_timeout_seconds"`
}

// CacheConfig selects and parameterizes the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // dir | sqlite | memory
	Dir     string `toml:"dir"`     // directory for the dir backend
	DB      string `toml:"db"`      // database file for the sqlite backend
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // trace | debug | info | warn | error
	File  string `toml:"file"`  // log file used in addition to stdout
}

// DebugConfig holds the debug HTTP listener settings.
type DebugConfig struct {
	Listen string `toml:"listen"` // address exposing /debug/pprof and /metrics; empty disables
}

// Load reads the TOML file at path, or returns built-in defaults when path
// is empty. Validation happens separately so CLI overrides can be applied
// first.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Validate checks field values after overrides have been applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be 1-65535; got %d", c.Server.Port)
	}
	if c.Server.MaxConns < 0 {
		return fmt.Errorf("config: server.max_conns must be non-negative; got %d", c.Server.MaxConns)
	}
	if c.Server.UpstreamPort < 0 || c.Server.UpstreamPort > 65535 {
		return fmt.Errorf("config: server.upstream_port must be 0-65535; got %d", c.Server.UpstreamPort)
	}
	if c.Server.DialTimeoutSeconds < 0 {
		return fmt.Errorf("config: server.dial_timeout_seconds must be non-negative; got %d", c.Server.DialTimeoutSeconds)
	}

	switch c.Cache.Backend {
	case BackendDir, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("config: cache.backend must be one of: dir, sqlite, memory; got %q", c.Cache.Backend)
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be one of: trace, debug, info, warn, error; got %q", c.Log.Level)
	}

	return nil
}

// setDefaults fills zero-valued fields. For integers, zero means "unset"
// because TOML cannot distinguish an explicit 0 from an omitted key.
func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8888
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendDir
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Cache.DB == "" {
		c.Cache.DB = "cache.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
}

// Addr returns the listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
