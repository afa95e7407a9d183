// Package config loads the client and proxy settings from an optional .env
// file, an optional config file named by BOARD_CONFIG, and BOARD_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"board-client/client"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyContext          = "context"
	KeyBackendURL       = "backend_url"
	KeyProxyOrigin      = "proxy_origin"
	KeyListenAddr       = "listen_addr"
	KeyAllowedOrigins   = "allowed_origins"
	KeyRateLimit        = "rate_limit"
	KeyRedisURL         = "redis_url"
	KeyClientIDFile     = "client_id_file"
	KeyCategoryCacheTTL = "category_cache_ttl"
)

type Config struct {
	Context          client.ExecutionContext
	BackendURL       string
	ProxyOrigin      string
	ListenAddr       string
	AllowedOrigins   []string
	RateLimit        int
	RedisURL         string
	ClientIDFile     string
	CategoryCacheTTL time.Duration
}

// ClientConfig returns the transport settings.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Context:     c.Context,
		BackendURL:  c.BackendURL,
		ProxyOrigin: c.ProxyOrigin,
	}
}

// LoadConfig reads .env (if present) and then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix("BOARD")
	vp.AutomaticEnv()

	vp.SetDefault(KeyContext, string(client.Direct))
	vp.SetDefault(KeyBackendURL, client.DefaultBackendURL)
	vp.SetDefault(KeyProxyOrigin, "http://localhost:3000")
	vp.SetDefault(KeyListenAddr, ":3000")
	vp.SetDefault(KeyAllowedOrigins, "http://localhost:3000")
	vp.SetDefault(KeyRateLimit, 30)
	vp.SetDefault(KeyRedisURL, "")
	vp.SetDefault(KeyClientIDFile, "")
	vp.SetDefault(KeyCategoryCacheTTL, "5m")
	return vp
}

// FromViper builds a Config from an already populated viper instance. A config
// file named by the "config" key is merged first.
func FromViper(vp *viper.Viper) (*Config, error) {
	if file := vp.GetString("config"); file != "" {
		vp.SetConfigFile(file)
		if err := vp.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		log.Printf("Loaded configuration from %s", file)
	}

	ctx := client.ExecutionContext(strings.ToLower(strings.TrimSpace(vp.GetString(KeyContext))))
	if ctx != client.Direct && ctx != client.Proxied {
		return nil, fmt.Errorf("invalid %s %q: want %q or %q", KeyContext, ctx, client.Direct, client.Proxied)
	}

	rateLimit := vp.GetInt(KeyRateLimit)
	if rateLimit < 0 {
		return nil, fmt.Errorf("invalid %s %d: must not be negative", KeyRateLimit, rateLimit)
	}

	ttl, err := time.ParseDuration(vp.GetString(KeyCategoryCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyCategoryCacheTTL, err)
	}

	return &Config{
		Context:          ctx,
		BackendURL:       vp.GetString(KeyBackendURL),
		ProxyOrigin:      vp.GetString(KeyProxyOrigin),
		ListenAddr:       vp.GetString(KeyListenAddr),
		AllowedOrigins:   parseOrigins(vp.GetString(KeyAllowedOrigins)),
		RateLimit:        rateLimit,
		RedisURL:         vp.GetString(KeyRedisURL),
		ClientIDFile:     vp.GetString(KeyClientIDFile),
		CategoryCacheTTL: ttl,
	}, nil
}

func parseOrigins(originsStr string) []string {
	var origins []string
	for _, origin := range strings.Split(originsStr, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
