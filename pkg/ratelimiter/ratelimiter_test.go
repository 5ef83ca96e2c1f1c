package ratelimiter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitanshuser50/ContentFuse/pkg/ratelimiter"
)

func newBucket(t *testing.T, cfg ratelimiter.Config) *ratelimiter.Bucket {
	t.Helper()
	store := ratelimiter.NewMemoryStore(0)
	t.Cleanup(store.Close)

	bucket, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return bucket
}

func TestBucketAllow(t *testing.T) {
	t.Run("allows up to capacity", func(t *testing.T) {
		bucket := newBucket(t, ratelimiter.Config{
			Capacity:       3,
			RefillRate:     3,
			RefillInterval: time.Minute,
		})

		for range 3 {
			result, err := bucket.Allow(t.Context(), "u1")
			require.NoError(t, err)
			assert.True(t, result.Allowed())
		}

		result, err := bucket.Allow(t.Context(), "u1")
		require.NoError(t, err)
		assert.False(t, result.Allowed())
		assert.Positive(t, result.RetryAfter())
	})

	t.Run("keys are independent", func(t *testing.T) {
		bucket := newBucket(t, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})

		first, err := bucket.Allow(t.Context(), "u1")
		require.NoError(t, err)
		assert.True(t, first.Allowed())

		other, err := bucket.Allow(t.Context(), "u2")
		require.NoError(t, err)
		assert.True(t, other.Allowed())
	})

	t.Run("reset restores capacity", func(t *testing.T) {
		bucket := newBucket(t, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})

		_, err := bucket.Allow(t.Context(), "u1")
		require.NoError(t, err)
		require.NoError(t, bucket.Reset(t.Context(), "u1"))

		result, err := bucket.Allow(t.Context(), "u1")
		require.NoError(t, err)
		assert.True(t, result.Allowed())
	})

	t.Run("rejects non-positive token count", func(t *testing.T) {
		bucket := newBucket(t, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})

		_, err := bucket.AllowN(t.Context(), "u1", 0)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})
}

func TestNewBucketValidation(t *testing.T) {
	store := ratelimiter.NewMemoryStore(0)
	defer store.Close()

	_, err := ratelimiter.NewBucket(store, ratelimiter.Config{})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	byHeader := func(r *http.Request) string { return r.Header.Get("X-User") }

	t.Run("limits per key and sets headers", func(t *testing.T) {
		bucket := newBucket(t, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})
		handler := ratelimiter.Middleware(bucket, byHeader)(next)

		req := httptest.NewRequest(http.MethodPost, "/api/image", nil)
		req.Header.Set("X-User", "u1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "rate_limited")
	})

	t.Run("empty key bypasses limiter", func(t *testing.T) {
		bucket := newBucket(t, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})
		handler := ratelimiter.Middleware(bucket, byHeader)(next)

		for range 5 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code)
		}
	})
}
