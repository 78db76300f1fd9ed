// Package ratelimit counts requests per client IP and per email in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCooldown = 2 * time.Minute
)

// Limiter is a fixed-window counter keyed by IP and purpose
type Limiter struct {
	client        *redis.Client
	limit         int
	window        time.Duration
	emailCooldown time.Duration
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client:        client,
		limit:         limit,
		window:        window,
		emailCooldown: DefaultEmailCooldown,
	}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("rate_limit:%s:%s", purpose, ip)
}

func emailCooldownKey(email string) string {
	return fmt.Sprintf("email_cooldown:%s", strings.ToLower(strings.TrimSpace(email)))
}

// CheckIPRateLimitWithPurpose reports whether ip has used up its requests
// for purpose in the current window
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit: %w", err)
	}
	return count >= l.limit, nil
}

// RecordIPRequestWithPurpose counts one request; the window starts with the first one
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return nil
}

// CheckEmailCooldown reports whether a mail was sent to email too recently
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Exists(ctx, emailCooldownKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}
	return n > 0, nil
}

func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	if err := l.client.Set(ctx, emailCooldownKey(email), "1", l.emailCooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return nil
}
