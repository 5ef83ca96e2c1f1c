package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and consumes atomically so concurrent API
// replicas never double-spend tokens.
//
// KEYS[1]: bucket hash key
// ARGV: capacity, refill rate, refill interval (ms), tokens requested, now (ms)
// Returns: {remaining, lastRefill (ms)}
var tokenBucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil then
  tokens = capacity
  last_refill = now
end

local intervals = math.floor((now - last_refill) / interval)
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  last_refill = now
end

tokens = tokens - requested

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill', last_refill)
redis.call('PEXPIRE', KEYS[1], interval * (math.floor(capacity / rate) + 2))

return {tokens, last_refill}
`)

// RedisStore implements Store on Redis, sharing bucket state across
// service replicas.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed store. Keys are namespaced with
// prefix to avoid collisions with other users of the same database.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, keyPrefix: prefix}
}

func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	now := time.Now()

	res, err := tokenBucketScript.Run(ctx, rs.client, []string{rs.key(key)},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		tokens,
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}

	remaining := int(res[0])
	lastRefill := time.UnixMilli(res[1])

	return remaining, lastRefill.Add(cfg.RefillInterval), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.key(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) key(key string) string {
	return rs.keyPrefix + ":" + key
}
