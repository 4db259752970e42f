package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	MaxResetRequests int
	ResetCooldown    time.Duration
}

// Limiter enforces per-identity and per-IP budgets for login and
// password-reset requests using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports whether the identity+IP pair still has login attempts
// left. Returns ErrThrottled when the budget is spent.
func (l *Limiter) CheckLogin(ctx context.Context, identity, ip string) error {
	if err := l.checkCounter(ctx, loginIdentityKey(identity), l.config.MaxLoginAttempts); err != nil {
		return err
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, loginIPKey(ip), l.config.MaxLoginAttempts); err != nil {
			return err
		}
	}

	return nil
}

// RecordLoginFailure counts a failed login attempt against the identity+IP
// pair.
func (l *Limiter) RecordLoginFailure(ctx context.Context, identity, ip string) error {
	count, err := l.incrementWithTTL(ctx, loginIdentityKey(identity), l.config.LoginCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLoginAttempts) {
		return ErrThrottled
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.incrementWithTTL(ctx, loginIPKey(ip), l.config.LoginCooldown)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxLoginAttempts) {
			return ErrThrottled
		}
	}

	return nil
}

// ResetLogin clears the failed-login counters after a successful login or a
// completed password reset.
func (l *Limiter) ResetLogin(ctx context.Context, identity, ip string) error {
	keys := []string{loginIdentityKey(identity)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, loginIPKey(ip))
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// CheckResetRequest counts a password-reset request against the identity and
// enforces the reset budget in one step. Reset requests are always counted;
// there is no success path that clears them early.
func (l *Limiter) CheckResetRequest(ctx context.Context, identity string) error {
	if l.config.MaxResetRequests <= 0 {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, resetIdentityKey(identity), l.config.ResetCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxResetRequests) {
		return ErrThrottled
	}

	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, max int) error {
	if max <= 0 {
		return nil
	}

	val, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if val >= int64(max) {
		return ErrThrottled
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 && ttl > 0 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func loginIdentityKey(identity string) string {
	return "al:login:id:" + identity
}

func loginIPKey(ip string) string {
	return "al:login:ip:" + ip
}

func resetIdentityKey(identity string) string {
	return "al:reset:id:" + identity
}
