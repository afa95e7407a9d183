// Package metrics holds the Prometheus collectors shared by the backend client
// and the proxy server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CodeError labels requests that never produced an HTTP status.
const CodeError = "error"

var (
	clientRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_client_requests_total",
		Help: "Requests sent to the posts backend, by method and status code.",
	}, []string{"method", "code"})

	clientDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_client_request_duration_seconds",
		Help:    "Latency of requests sent to the posts backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	proxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_proxy_requests_total",
		Help: "Requests served by the same-origin proxy, by method and status code.",
	}, []string{"method", "code"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_proxy_rate_limited_total",
		Help: "Requests rejected by the proxy rate limiter.",
	})
)

// ObserveClientRequest records one backend round trip. status 0 means the
// request failed before a response arrived.
func ObserveClientRequest(method string, status int, elapsed time.Duration) {
	code := CodeError
	if status > 0 {
		code = strconv.Itoa(status)
	}
	clientRequests.WithLabelValues(method, code).Inc()
	clientDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func ObserveProxyRequest(method string, status int) {
	proxyRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func ObserveRateLimited() {
	rateLimited.Inc()
}

// ClientRequests exposes the client counter for tests.
func ClientRequests(method string, code string) prometheus.Counter {
	return clientRequests.WithLabelValues(method, code)
}
