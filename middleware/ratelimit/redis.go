package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrementScript opens the window on the first hit only.
var incrementScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RedisStore shares counters between server instances. The window is the
// key's TTL, set on the first hit.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (int, time.Time, error) {
	pipe := s.rdb.Pipeline()
	get := pipe.Get(ctx, s.key(key))
	ttl := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, time.Time{}, fmt.Errorf("failed to read rate limit: %w", err)
	}

	count, err := get.Int()
	if errors.Is(err, redis.Nil) {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read rate limit: %w", err)
	}

	return count, time.Now().Add(ttl.Val()), nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	res, err := incrementScript.Run(ctx, s.rdb, []string{s.key(key)}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("failed to increment rate limit: unexpected reply %v", res)
	}

	count, _ := res[0].(int64)
	ttl, _ := res[1].(int64)
	return int(count), time.Now().Add(time.Duration(ttl) * time.Millisecond), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
