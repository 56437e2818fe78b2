package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

func rateLimitKey(resource, id string) string {
	return "rl:" + resource + ":" + id
}

// CheckRateLimit counts one hit for id against resource and reports whether it
// is within limit for the current window. Test and development environments
// are never limited.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true, nil
	}
	if rdb == nil {
		return false, errNoRedis
	}

	key := rateLimitKey(resource, id)
	hits, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	// The window starts with the first hit.
	if hits == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return hits <= int64(limit), nil
}

// RateLimit limits requests to a named resource, keyed by the signed-in
// profile when there is one and by remote IP otherwise.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy. Rejections
// are returned as *fiber.Error so the app's error handler picks the format.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if pid, ok := c.Locals("profileID").(string); ok && pid != "" {
			id = "profile:" + pid
		}
		resource := name
		if resource == "" {
			resource = c.Route().Path
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
			if policy == FailClosed {
				return fiber.NewError(fiber.StatusServiceUnavailable, "Please try again in a moment.")
			}
			return c.Next()
		}
		if !allowed {
			if ttl := rdb.TTL(c.UserContext(), rateLimitKey(resource, id)).Val(); ttl > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Round(time.Second)/time.Second)))
			}
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		}
		return c.Next()
	}
}
