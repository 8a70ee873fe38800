package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/http/response"
	"jobboard/internal/ratelimit"
)

func RateLimit(limiter ratelimit.Limiter, keyFn func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(key, limit, window) {
				w.Header().Set("Retry-After", retryAfter(window))
				response.Error(w, common.NewError(common.CodeRateLimited, "too many requests, try again later", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ByIP keys requests by client address under the given prefix.
func ByIP(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		return prefix + ":" + ClientIP(r)
	}
}

// ClientIP returns the first X-Forwarded-For entry or the remote address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(window time.Duration) string {
	seconds := int(window.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
