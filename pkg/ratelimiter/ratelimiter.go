package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/softdesk/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeIssue   = "issue"
	ScopeComment = "comment"
)

// RateLimitError is returned when the user is still inside a cooldown window.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(userID uint, scope string) string {
	return fmt.Sprintf("rate_limit:user:%d:%s", userID, scope)
}

// CheckAndSetRateLimit claims the cooldown slot for (userID, scope). It reports false
// when the slot is already held. A nil client always allows.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uint, scope string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(userID, scope), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uint, scope string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(userID, scope)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uint, scope string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key(userID, scope)).Err()
}

// Acquire claims the slot and returns a release func that frees it again, for callers
// that must give the slot back when the guarded write fails.
func Acquire(ctx context.Context, rdb *redis.Client, userID uint, scope string, limit time.Duration) (func(), error) {
	allowed, err := CheckAndSetRateLimit(ctx, rdb, userID, scope, limit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, rdb, userID, scope)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you can only create one %s every %.0f seconds. Please wait %.0f seconds", scope, limit.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	return func() {
		_ = ClearRateLimit(ctx, rdb, userID, scope)
	}, nil
}
