package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salestrack/backend/internal/domain"
)

// Counters are scoped to chat traffic; other surfaces are not limited.
const rateLimitKeyPrefix = "chat:ratelimit:"

// RateLimitDecision is the outcome of counting one request against a
// principal's one-minute window.
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter caps chat requests per principal using a fixed one-minute
// window in Redis (INCR plus ExpireNX on the first hit of each window).
type RateLimiter struct {
	client *Client
	limit  int64
}

// NewRateLimiter creates a limiter allowing requestsPerMinute plus burst
// requests inside any single window.
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
	}
}

// Allow counts the request and reports whether the principal is still
// within its window.
func (r *RateLimiter) Allow(ctx context.Context, principal domain.Principal) (RateLimitDecision, error) {
	key := rateLimitKeyPrefix + principal.UserID.String()
	resetAt := time.Now().Truncate(time.Minute).Add(time.Minute)

	pipe := r.client.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return RateLimitDecision{}, fmt.Errorf("failed to count request: %w", err)
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitDecision{
		Allowed:   count <= r.limit,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}, nil
}
