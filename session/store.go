package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acldev/aclauth/internal"
)

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("session redis unavailable")

// RedisStore is a Redis-backed session bound to a single session key. One
// instance serves one request; construct it from the key presented by the
// transport, or with an empty key for a brand-new session.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	key    string
	ttl    time.Duration
}

// NewRedisStore binds a session store to key. An empty key starts a fresh
// anonymous session. prefix namespaces the Redis keys; ttl bounds the
// session lifetime and is re-applied on every write.
func NewRedisStore(redisClient redis.UniversalClient, prefix, key string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "alsess"
	}
	if key == "" {
		key = internal.NewSessionKey()
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		key:    key,
		ttl:    ttl,
	}
}

// Key returns the current session key. It changes after Recreate; transports
// must re-read it when committing the response.
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) redisKey() string {
	return s.prefix + ":" + s.key
}

// Get returns the value stored under name, or "" when absent.
func (s *RedisStore) Get(ctx context.Context, name string) (string, error) {
	val, err := s.redis.HGet(ctx, s.redisKey(), name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}

// SetMany writes all given attributes in one round trip and refreshes the
// session TTL.
func (s *RedisStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	fields := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		fields = append(fields, k, v)
	}

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, s.redisKey(), fields...)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.redisKey(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Destroy removes the session bag. The key itself stays bound so a following
// SetMany starts a fresh bag under the same key.
func (s *RedisStore) Destroy(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.redisKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Recreate destroys the current session and rebinds the store to a fresh
// random key.
func (s *RedisStore) Recreate(ctx context.Context) error {
	if err := s.Destroy(ctx); err != nil {
		return err
	}
	s.key = internal.NewSessionKey()
	return nil
}
