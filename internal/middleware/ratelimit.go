package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/metrics"
	"github.com/pickup-archive/pickups-api/internal/utils"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// fixedWindowScript counts hits in the current window. The first hit starts
// the window's expiry. Returns {count, remaining window in ms}.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
    ttl = tonumber(ARGV[1])
end
return {current, ttl}`)

// WindowCounter increments the hit count for key within a fixed window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
	Reset(ctx context.Context, key string) error
}

type redisWindowCounter struct {
	client redis.Cmdable
}

func NewRedisWindowCounter(client redis.Cmdable) WindowCounter {
	return &redisWindowCounter{client: client}
}

func (r *redisWindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	result, err := fixedWindowScript.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to execute rate limit script: %w", err)
	}
	if len(result) != 2 {
		return 0, 0, fmt.Errorf("unexpected script result format")
	}
	return result[0], time.Duration(result[1]) * time.Millisecond, nil
}

func (r *redisWindowCounter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

type RateLimitMiddleware struct {
	config  *config.RateLimitConfig
	counter WindowCounter
	breaker *CircuitBreaker
	logger  *logrus.Logger
}

func NewRateLimitMiddleware(cfg *config.RateLimitConfig, counter WindowCounter, breaker *CircuitBreaker, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		config:  cfg,
		counter: counter,
		breaker: breaker,
		logger:  logger,
	}
}

// Handle applies one fixed window per client IP to every non-exempt path.
// Redis trouble lets the request through.
func (r *RateLimitMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.config.Enabled {
			return c.Next()
		}

		path := c.Path()
		if utils.HasAnyPrefix(path, r.config.ExemptPaths) {
			return c.Next()
		}

		key := rateLimitKey(r.getClientIP(c))

		var count int64
		var resetIn time.Duration
		err := r.breaker.Execute(c.UserContext(), func(ctx context.Context) error {
			var err error
			count, resetIn, err = r.counter.Hit(ctx, key, r.config.WindowSize)
			return err
		})
		if err != nil {
			r.logger.WithError(err).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}

		remaining := int64(r.config.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		r.setRateLimitHeaders(c, remaining, resetIn)

		if count > int64(r.config.Requests) {
			metrics.RecordRateLimitDrop("ip")
			r.logger.WithFields(logrus.Fields{
				"key":    key,
				"path":   path,
				"method": c.Method(),
				"count":  count,
			}).Warn("Rate limit exceeded")

			return WriteError(c, apperrors.NewAppError(apperrors.CodeRateLimited,
				"Too many requests from this IP, please try again later.", nil))
		}

		return c.Next()
	}
}

// Reset clears the current window of one client IP.
func (r *RateLimitMiddleware) Reset(ctx context.Context, ip string) error {
	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.counter.Reset(ctx, rateLimitKey(ip))
	})
}

func rateLimitKey(ip string) string {
	return "ratelimit:ip:" + ip
}

// getClientIP prefers the first X-Forwarded-For hop set by the load balancer.
func (r *RateLimitMiddleware) getClientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.IP()
}

func (r *RateLimitMiddleware) setRateLimitHeaders(c *fiber.Ctx, remaining int64, resetIn time.Duration) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(r.config.Requests))
	c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))

	if remaining <= 0 {
		retryAfter := int(resetIn.Seconds()) + 1
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
	}
}
