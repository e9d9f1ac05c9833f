package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is the subset of *redis_rate.Limiter the service uses.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimitResult represents the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAfter time.Duration
}

// RateLimitService applies per-user GCRA limits stored in Redis.
type RateLimitService struct {
	limiter   Limiter
	perMinute int
	logger    *zap.Logger
}

// NewRateLimitService creates a RateLimitService backed by rdb.
func NewRateLimitService(rdb *redis.Client, perMinute int, logger *zap.Logger) *RateLimitService {
	return NewRateLimitServiceWithLimiter(redis_rate.NewLimiter(rdb), perMinute, logger)
}

// NewRateLimitServiceWithLimiter creates a RateLimitService over any Limiter.
func NewRateLimitServiceWithLimiter(limiter Limiter, perMinute int, logger *zap.Logger) *RateLimitService {
	return &RateLimitService{
		limiter:   limiter,
		perMinute: perMinute,
		logger:    logger,
	}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// CheckLimit consumes one request from the bucket for (scope, subject).
func (s *RateLimitService) CheckLimit(ctx context.Context, scope, subject string) (*RateLimitResult, error) {
	key := buildKey(scope, subject)

	res, err := s.limiter.Allow(ctx, key, redis_rate.PerMinute(s.perMinute))
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}

	result := &RateLimitResult{
		Allowed:    res.Allowed > 0,
		Limit:      s.perMinute,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
		ResetAfter: res.ResetAfter,
	}
	if !result.Allowed {
		s.logger.Debug("rate limit exceeded",
			zap.String("key", key),
			zap.Duration("retry_after", res.RetryAfter))
	}
	return result, nil
}

func buildKey(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}
