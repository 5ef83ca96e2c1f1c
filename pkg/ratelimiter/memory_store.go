package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucketState struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore implements Store with process-local state. Suitable for tests
// and single-instance deployments; multi-instance deployments should use
// RedisStore so all replicas share bucket state.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucketState

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// NewMemoryStore creates an in-memory store. Stale buckets are evicted in the
// background every cleanupInterval; pass 0 to disable eviction.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*bucketState),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	if ms.cleanupInterval > 0 {
		go ms.cleanupLoop()
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	b, exists := ms.buckets[key]
	if !exists {
		b = &bucketState{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// Cap elapsed intervals so long-idle buckets cannot overflow the counter.
	elapsed := now.Sub(b.lastRefill)
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(elapsed/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}

	b.tokens -= tokens
	b.lastAccess = now

	return b.tokens, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (ms *MemoryStore) Close() {
	ms.closeOnce.Do(func() { close(ms.stopCleanup) })
}

func (ms *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeStale()
		case <-ms.stopCleanup:
			return
		}
	}
}

func (ms *MemoryStore) removeStale() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for key, b := range ms.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(ms.buckets, key)
		}
	}
}
