package middleware

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to a standalone Redis. password overrides the
// configured one when it came from Secrets Manager.
func NewRedisClient(cfg *config.RedisConfig, password string, logger *logrus.Logger) (*redis.Client, error) {
	if password == "" {
		password = cfg.Password
	}

	options := &redis.Options{
		Addr:         cfg.Address,
		Password:     password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,

		MinIdleConns:    2,
		ConnMaxIdleTime: 10 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,

		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	}

	if cfg.TLSEnabled {
		options.TLSConfig = &tls.Config{
			ServerName: extractHostname(cfg.Address),
		}
		logger.WithField("address", cfg.Address).Info("Redis TLS encryption enabled")
	}

	rdb := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		// Rate limiting and idempotency fail open, so a missing Redis at
		// boot is logged rather than fatal.
		logger.WithError(err).WithField("address", cfg.Address).Warn("Redis not reachable at startup")
		return rdb, nil
	}

	logger.WithFields(logrus.Fields{
		"address": cfg.Address,
		"db":      cfg.Database,
	}).Info("Connected to Redis")

	return rdb, nil
}

// RedisHealthCheck pings Redis with a short timeout.
func RedisHealthCheck(redisClient redis.UniversalClient) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unavailable: %w", err)
		}
		return nil
	}
}

// extractHostname extracts hostname from address (host:port -> host)
func extractHostname(address string) string {
	if idx := strings.LastIndex(address, ":"); idx != -1 {
		return address[:idx]
	}
	return address
}
