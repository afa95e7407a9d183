// Package client is the HTTP transport for the posts backend. It resolves the
// base URL from an explicit execution context, sends JSON, and turns every
// failure into either an *HTTPError or a *TransportError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"board-client/metrics"

	"github.com/pkg/errors"
)

// ExecutionContext decides how the backend is reached.
type ExecutionContext string

const (
	// Direct talks to the backend origin itself.
	Direct ExecutionContext = "direct"
	// Proxied goes through a same-origin reverse proxy mounted at /api.
	Proxied ExecutionContext = "proxied"
)

// ProxyPrefix is the path the same-origin proxy is mounted on.
const ProxyPrefix = "/api"

const DefaultBackendURL = "http://localhost:4000"

type Config struct {
	Context     ExecutionContext
	BackendURL  string
	ProxyOrigin string
	HTTPClient  *http.Client
	Logger      *log.Logger
}

type RequestOptions struct {
	Method string
	Body   interface{}
	Header http.Header
}

type Transport struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func NewTransport(cfg Config) (*Transport, error) {
	baseURL, err := ResolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Transport{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// ResolveBaseURL returns the URL every endpoint is appended to.
func ResolveBaseURL(cfg Config) (string, error) {
	switch cfg.Context {
	case Proxied:
		if cfg.ProxyOrigin == "" {
			return "", errors.New("proxied execution context requires a proxy origin")
		}
		return strings.TrimRight(cfg.ProxyOrigin, "/") + ProxyPrefix, nil
	case Direct, "":
		backend := cfg.BackendURL
		if backend == "" {
			backend = DefaultBackendURL
		}
		return strings.TrimRight(backend, "/"), nil
	default:
		return "", fmt.Errorf("unknown execution context %q", cfg.Context)
	}
}

func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Request sends one request to endpoint and decodes a JSON response body into
// out when out is non-nil. There are no retries.
func (t *Transport) Request(ctx context.Context, endpoint string, opts *RequestOptions, out interface{}) error {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := t.baseURL + endpoint

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return t.fail(&TransportError{Op: method, URL: url, Err: errors.Wrap(err, "encode request body")})
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return t.fail(&TransportError{Op: method, URL: url, Err: errors.Wrap(err, "build request")})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		metrics.ObserveClientRequest(method, 0, time.Since(start))
		return t.fail(&TransportError{Op: method, URL: url, Err: errors.Wrap(err, "send request")})
	}
	defer resp.Body.Close()
	metrics.ObserveClientRequest(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return t.fail(&HTTPError{Status: resp.StatusCode, Method: method, URL: url})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.fail(&TransportError{Op: method, URL: url, Err: errors.Wrap(err, "read response body")})
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return t.fail(&TransportError{Op: method, URL: url, Err: errors.Wrap(err, "decode response body")})
	}
	return nil
}

func (t *Transport) fail(err error) error {
	t.logger.Printf("API request error: %v", err)
	return err
}
