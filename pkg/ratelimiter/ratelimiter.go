// Package ratelimiter implements a token bucket rate limiter with pluggable
// storage backends. The API server keys buckets by authenticated user ID to
// protect the AI providers from request bursts; the limiter is independent of
// the free-generation quota.
package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Store persists token bucket state.
type Store interface {
	// ConsumeTokens attempts to consume tokens from the bucket identified by
	// key. A negative remaining count means the request must be denied.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the bucket state for the given key.
	Reset(ctx context.Context, key string) error
}

// Config defines the token bucket parameters.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`       // burst limit
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"10"`    // tokens added per interval
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying, zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Bucket is a token bucket rate limiter on top of a Store.
type Bucket struct {
	store Store
	cfg   Config
}

// NewBucket creates a token bucket limiter, validating the configuration.
func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

// Allow consumes a single token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg)
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:     b.cfg.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the bucket for key.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
