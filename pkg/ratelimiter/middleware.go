package ratelimiter

import (
	"net/http"
	"strconv"
)

// KeyFunc extracts a rate limit key from the request. An empty key bypasses
// the limiter (e.g. unauthenticated health checks).
type KeyFunc func(r *http.Request) string

// Middleware applies the token bucket to each request. Store failures fail
// open: the request proceeds, since the free-quota gate downstream still
// bounds unpaid usage and a Redis outage should not take generation down.
func Middleware(bucket *Bucket, keyFunc KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := bucket.Allow(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if retryAfter := int(result.RetryAfter().Seconds()); retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"Too Many Requests"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
