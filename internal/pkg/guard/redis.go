package guard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	failKeyTpl = "guard:%s:fail:%s" // guard:${prefix}:fail:${key}
	lockKeyTpl = "guard:%s:lock:%s" // guard:${prefix}:lock:${key}
)

// RedisStore is a Store shared by every API instance through redis.
// Failures live in a sorted set scored by time; expiry is left to redis key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a RedisStore. prefix namespaces the keys.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "login"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) failKey(key string) string {
	return fmt.Sprintf(failKeyTpl, s.prefix, key)
}

func (s *RedisStore) lockKey(key string) string {
	return fmt.Sprintf(lockKeyTpl, s.prefix, key)
}

func (s *RedisStore) Locked(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.lockKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check lockout: %w", err)
	}
	// -2 (missing key) and -1 (no expiry) both come back negative
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Fail trims failures older than window, adds this one and refreshes the key TTL in one transaction.
func (s *RedisStore) Fail(ctx context.Context, key string, window time.Duration) (int, error) {
	k := s.failKey(key)
	now := s.now()
	cutoff := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", cutoff)
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, k)
	pipe.PExpire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count login failure: %w", err)
	}
	return int(count.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, d time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.lockKey(key), 1, d)
	pipe.Del(ctx, s.failKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to lock out: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.failKey(key), s.lockKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear login failures: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
