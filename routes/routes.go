package routes

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"board-client/client"
	"board-client/controllers"
	"board-client/middlewares"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the same-origin proxy server.
type Options struct {
	BackendURL     string
	AllowedOrigins []string
	// RateLimit is the per-IP request budget per RateWindow. 0 disables it.
	RateLimit  int
	RateWindow time.Duration
}

// SetupRoutes builds the proxy router: /api/* is forwarded to the backend with
// the prefix removed. The returned stop function releases the rate limiter.
func SetupRoutes(opts Options) (http.Handler, func(), error) {
	target, err := url.Parse(opts.BackendURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, nil, fmt.Errorf("invalid backend URL %q", opts.BackendURL)
	}

	router := mux.NewRouter()

	// Apply global middlewares
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(opts.AllowedOrigins)))
	router.Use(middlewares.LoggingMiddleware)

	stop := func() {}
	if opts.RateLimit > 0 {
		window := opts.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		rateLimiter := middlewares.NewRateLimiter(opts.RateLimit, window, 2*window)
		router.Use(rateLimiter.Limit)
		stop = rateLimiter.Stop
	}

	router.PathPrefix(client.ProxyPrefix + "/").Handler(
		http.StripPrefix(client.ProxyPrefix, middlewares.ValidatePostPayload(newBackendProxy(target))),
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	controllers.SetupRootRoute(router)

	return router, stop, nil
}

func newBackendProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		middlewares.HttpError(w, "Backend unavailable", http.StatusBadGateway, err)
	}
	return proxy
}
