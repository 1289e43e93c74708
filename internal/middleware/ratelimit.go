package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// limiterExempt reports whether the configured environment runs without rate
// limits. Local runs, tests and load tests ("stress") are never throttled;
// an unconfigured limiter behaves like development.
func limiterExempt() bool {
	env := "development"
	if cfg != nil && cfg.Env != "" {
		env = cfg.Env
	}
	switch env {
	case "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit reports whether the identity may touch the resource again.
// Counting is fixed-window: the first hit creates the counter with the window
// as its TTL, later hits only increment.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if limiterExempt() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("rate limiter has no redis client")
	}

	key := fmt.Sprintf("ratelimit:%s:%s", resource, id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// clientIdentity keys the limiter by authenticated user when available,
// falling back to the remote IP for anonymous endpoints like login.
func clientIdentity(c *fiber.Ctx) string {
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("user:%v", uid)
	}
	return "ip:" + c.IP()
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`
// with the FailOpen policy.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests
// per `window`. The optional name labels the counter; it defaults to the
// request path.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, clientIdentity(c), limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, refusing request",
					"resource", resource, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Rate limiter unavailable",
				})
			}
			// FailOpen: a broken limiter must not take the endpoint down.
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		}
		return c.Next()
	}
}
