package middleware

import (
	"fmt"

	"github.com/pickup-archive/pickups-api/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Manager holds all middleware instances
type Manager struct {
	Auth           *AuthMiddleware
	Idempotency    *IdempotencyMiddleware
	RateLimit      *RateLimitMiddleware
	ErrorLogger    *ErrorLoggerMiddleware
	CircuitBreaker *CircuitBreaker
	RedisClient    *redis.Client
	Config         *config.Config
	Logger         *logrus.Logger
}

// Credentials are the secrets resolved before the middleware is built.
type Credentials struct {
	JWTSecret     string
	RedisPassword string
}

// NewManager creates a new middleware manager with all middleware initialized
func NewManager(cfg *config.Config, creds Credentials, logger *logrus.Logger) (*Manager, error) {
	redisClient, err := NewRedisClient(&cfg.Redis, creds.RedisPassword, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	authMiddleware, err := NewAuthMiddleware(&cfg.JWT, creds.JWTSecret, logger)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	breaker := NewCircuitBreaker(logger)

	return &Manager{
		Auth:           authMiddleware,
		Idempotency:    NewIdempotencyMiddleware(NewRedisResponseCache(redisClient), breaker, logger),
		RateLimit:      NewRateLimitMiddleware(&cfg.RateLimit, NewRedisWindowCounter(redisClient), breaker, logger),
		ErrorLogger:    NewErrorLoggerMiddleware(logger),
		CircuitBreaker: breaker,
		RedisClient:    redisClient,
		Config:         cfg,
		Logger:         logger,
	}, nil
}

// Close closes all middleware resources
func (m *Manager) Close() error {
	if m.RedisClient != nil {
		return m.RedisClient.Close()
	}
	return nil
}
