package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Cache.Backend != BackendDir {
		t.Errorf("backend = %q, want %q", cfg.Cache.Backend, BackendDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
port = 9000
max_conns = 32

[cache]
backend = "sqlite"
db = "proxy.db"

[log]
level = "info"

[debug]
listen = "127.0.0.1:6060"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.MaxConns != 32 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != BackendSQLite || cfg.Cache.DB != "proxy.db" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
	if cfg.Debug.Listen != "127.0.0.1:6060" {
		t.Errorf("debug listen = %q", cfg.Debug.Listen)
	}
	// defaults still fill unset fields
	if cfg.Cache.Dir != "cache" {
		t.Errorf("dir = %q, want cache", cfg.Cache.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Cache.Backend = "redis" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"bad upstream port", func(c *Config) { c.Server.UpstreamPort = 70000 }},
		{"negative max conns", func(c *Config) { c.Server.MaxConns = -1 }},
	}

	for _, tt := range tests {
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestAddr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8888}
	if got := c.Addr(); got != "127.0.0.1:8888" {
		t.Fatalf("Addr() = %q", got)
	}
}
