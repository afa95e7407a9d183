package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"board-client/client"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Context != client.Direct {
		t.Errorf("context = %q, want direct", cfg.Context)
	}
	if cfg.BackendURL != client.DefaultBackendURL {
		t.Errorf("backend = %q", cfg.BackendURL)
	}
	if cfg.RateLimit != 30 || cfg.CategoryCacheTTL != 5*time.Minute {
		t.Errorf("rate limit %d, ttl %v", cfg.RateLimit, cfg.CategoryCacheTTL)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestFromViperEnvironment(t *testing.T) {
	t.Setenv("BOARD_CONTEXT", "Proxied")
	t.Setenv("BOARD_PROXY_ORIGIN", "https://board.example")
	t.Setenv("BOARD_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BOARD_RATE_LIMIT", "0")
	t.Setenv("BOARD_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("BOARD_CATEGORY_CACHE_TTL", "30s")

	cfg, err := FromViper(newViper())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Context != client.Proxied {
		t.Errorf("context = %q", cfg.Context)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimit != 0 || cfg.RedisURL != "redis://localhost:6379/1" || cfg.CategoryCacheTTL != 30*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}

	base, err := client.ResolveBaseURL(cfg.ClientConfig())
	if err != nil {
		t.Fatalf("ResolveBaseURL: %v", err)
	}
	if base != "https://board.example/api" {
		t.Errorf("base URL = %q", base)
	}
}

func TestFromViperConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	content := "backend_url: http://posts.internal:4000\nlisten_addr: \":8080\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOARD_CONFIG", path)
	t.Setenv("BOARD_LISTEN_ADDR", ":9090")

	cfg, err := FromViper(newViper())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.BackendURL != "http://posts.internal:4000" {
		t.Errorf("backend = %q, want value from file", cfg.BackendURL)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen = %q, environment should win over the file", cfg.ListenAddr)
	}
}

func TestFromViperErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad context", key: "BOARD_CONTEXT", val: "browser"},
		{name: "negative rate limit", key: "BOARD_RATE_LIMIT", val: "-1"},
		{name: "bad ttl", key: "BOARD_CATEGORY_CACHE_TTL", val: "soon"},
		{name: "missing config file", key: "BOARD_CONFIG", val: "/nonexistent/board.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := FromViper(newViper()); err == nil {
				t.Errorf("%s=%s: expected error", tt.key, tt.val)
			}
		})
	}
}
