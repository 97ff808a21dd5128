// Package store holds the persistence adapters: pickups in MongoDB and the
// admin credential in DynamoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when no record matches an id, name or username.
var ErrNotFound = errors.New("not found")

// ConnectMongo dials MongoDB and keeps retrying on a fixed delay until the
// first ping succeeds or ctx is cancelled.
func ConnectMongo(ctx context.Context, cfg *config.MongoConfig, logger *logrus.Logger) (*mongo.Client, error) {
	for attempt := 1; ; attempt++ {
		client, err := connectOnce(ctx, cfg)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"database": cfg.Database,
				"attempt":  attempt,
			}).Info("Connected to MongoDB")
			return client, nil
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": cfg.RetryDelay.String(),
		}).Error("MongoDB connection failed, retrying")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to MongoDB: %w", ctx.Err())
		case <-time.After(cfg.RetryDelay):
		}
	}
}

func connectOnce(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetAppName("pickups-api"))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// MongoHealthCheck pings the primary with a short timeout.
func MongoHealthCheck(client *mongo.Client) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("mongodb unavailable: %w", err)
		}
		return nil
	}
}
