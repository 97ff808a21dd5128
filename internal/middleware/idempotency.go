package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/pickup-archive/pickups-api/internal/metrics"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const HeaderIdempotencyKey = "Idempotency-Key"

var errCacheMiss = errors.New("cache miss")

// ResponseCache stores replayable responses by key.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisResponseCache struct {
	client redis.Cmdable
}

func NewRedisResponseCache(client redis.Cmdable) ResponseCache {
	return &redisResponseCache{client: client}
}

func (r *redisResponseCache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCacheMiss
	}
	return v, err
}

func (r *redisResponseCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

type IdempotencyMiddleware struct {
	cache   ResponseCache
	breaker *CircuitBreaker
	logger  *logrus.Logger
	ttl     time.Duration
}

type IdempotencyRecord struct {
	Fingerprint string    `json:"fingerprint"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewIdempotencyMiddleware(cache ResponseCache, breaker *CircuitBreaker, logger *logrus.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		cache:   cache,
		breaker: breaker,
		logger:  logger,
		ttl:     5 * time.Minute,
	}
}

// Handle replays the stored response when a request repeats an
// Idempotency-Key. Requests without the header pass straight through, and a
// Redis outage never blocks the write.
func (i *IdempotencyMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idempotencyKey := c.Get(HeaderIdempotencyKey)
		if idempotencyKey == "" {
			return c.Next()
		}

		if _, err := uuid.Parse(idempotencyKey); err != nil {
			return WriteError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Idempotency-Key must be a valid UUID", nil))
		}

		redisKey := fmt.Sprintf("idempotency:%s:%s", GetAdminID(c), idempotencyKey)
		fingerprint := i.generateFingerprint(c)

		existing, err := i.getRecord(c.UserContext(), redisKey)
		if err != nil && !errors.Is(err, errCacheMiss) {
			i.logger.WithError(err).Warn("Failed to get idempotency record")
		}

		if existing != nil {
			if existing.Fingerprint != fingerprint {
				metrics.RecordIdempotencyHit("conflict")
				return WriteError(c, apperrors.NewAppError(apperrors.CodeIdempotencyConflict,
					"Request body differs from original request with same Idempotency-Key", nil))
			}

			metrics.RecordIdempotencyHit("replay")
			c.Set("X-Idempotency-Cached", "true")
			if existing.ContentType != "" {
				c.Set(fiber.HeaderContentType, existing.ContentType)
			}
			return c.Status(existing.StatusCode).SendString(existing.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode < 200 || statusCode >= 300 {
			return nil
		}

		record := &IdempotencyRecord{
			Fingerprint: fingerprint,
			StatusCode:  statusCode,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        string(c.Response().Body()),
			CreatedAt:   time.Now(),
		}
		if err := i.storeRecord(c.UserContext(), redisKey, record); err != nil {
			i.logger.WithError(err).WithField("idempotency_key", idempotencyKey).Warn("Failed to store idempotency record")
		}

		return nil
	}
}

// generateFingerprint hashes everything that makes two requests the same.
func (i *IdempotencyMiddleware) generateFingerprint(c *fiber.Ctx) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte(":"))
	h.Write([]byte(c.Path()))
	h.Write([]byte(":"))
	h.Write(c.Body())
	return hex.EncodeToString(h.Sum(nil))
}

func (i *IdempotencyMiddleware) getRecord(ctx context.Context, key string) (*IdempotencyRecord, error) {
	var data string
	err := i.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		data, err = i.cache.Get(ctx, key)
		if errors.Is(err, errCacheMiss) {
			// a miss is a healthy answer
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, errCacheMiss
	}

	var record IdempotencyRecord
	if err := sonic.UnmarshalString(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	return &record, nil
}

func (i *IdempotencyMiddleware) storeRecord(ctx context.Context, key string, record *IdempotencyRecord) error {
	data, err := sonic.MarshalString(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	return i.breaker.Execute(ctx, func(ctx context.Context) error {
		return i.cache.Set(ctx, key, data, i.ttl)
	})
}
