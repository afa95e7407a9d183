package middlewares

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"board-client/metrics"
)

// RateLimiter allows each client IP at most limit requests per window.
type RateLimiter struct {
	limits     sync.Map
	limit      int32
	window     time.Duration
	cleanupInt time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

type clientData struct {
	requests int32
	timer    *time.Timer
}

func NewRateLimiter(limit int, window time.Duration, cleanupInt time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:      int32(limit),
		window:     window,
		cleanupInt: cleanupInt,
		stop:       make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop ends the cleanup goroutine and all reset timers.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
		rl.limits.Range(func(key, value interface{}) bool {
			value.(*clientData).timer.Stop()
			return true
		})
	})
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInt)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.limits.Range(func(key, value interface{}) bool {
				data := value.(*clientData)
				if atomic.LoadInt32(&data.requests) == 0 {
					data.timer.Stop()
					rl.limits.Delete(key)
				}
				return true
			})
		}
	}
}

func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if parsedIP := net.ParseIP(ip); parsedIP != nil {
				return ip
			}
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if parsedIP := net.ParseIP(ip); parsedIP != nil {
		return ip
	}
	return ""
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		fresh := &clientData{
			timer: time.AfterFunc(rl.window, func() {
				rl.resetRequests(clientIP)
			}),
		}
		data, loaded := rl.limits.LoadOrStore(clientIP, fresh)
		if loaded {
			fresh.timer.Stop()
		}
		cd := data.(*clientData)

		if atomic.AddInt32(&cd.requests, 1) > rl.limit {
			metrics.ObserveRateLimited()
			HttpError(w, "Too many requests", http.StatusTooManyRequests, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) resetRequests(clientIP string) {
	data, ok := rl.limits.Load(clientIP)
	if !ok {
		return
	}
	cd := data.(*clientData)
	atomic.StoreInt32(&cd.requests, 0)
	cd.timer.Reset(rl.window)
}
