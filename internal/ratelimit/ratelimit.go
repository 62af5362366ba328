// Package ratelimit implements a fixed-window request counter backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rate is a number of requests allowed per window. The zero Rate disables limiting.
type Rate struct {
	Requests int
	Window   time.Duration
}

func (r Rate) Enabled() bool {
	return r.Requests > 0 && r.Window > 0
}

func (r Rate) String() string {
	if !r.Enabled() {
		return "unlimited"
	}
	return fmt.Sprintf("%d per %s", r.Requests, r.Window)
}

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRate parses strings like "100/hour" or "10/minute". An empty string
// yields the zero (disabled) Rate.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rate{}, nil
	}

	count, unit, ok := strings.Cut(s, "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: expected <count>/<unit>", s)
	}

	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n < 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: bad request count", s)
	}

	unit = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), "s")
	window, ok := units[unit]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: unknown unit %q", s, unit)
	}

	return Rate{Requests: n, Window: window}, nil
}

// Result describes the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type RedisLimiter struct {
	rdb  *redis.Client
	rate Rate
	now  func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(rdb *redis.Client, rate Rate) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, rate: rate, now: time.Now}
}

// WithClock replaces the limiter's time source.
func (l *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	l.now = now
	return l
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	windowStart := now.Truncate(l.rate.Window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.rate.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	res := Result{
		Allowed: count <= l.rate.Requests,
		Limit:   l.rate.Requests,
	}
	if res.Allowed {
		res.Remaining = l.rate.Requests - count
	} else {
		res.RetryAfter = windowStart.Add(l.rate.Window).Sub(now)
	}
	return res, nil
}
