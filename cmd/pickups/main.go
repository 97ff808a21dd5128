package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/pickup-archive/pickups-api/docs" // Swagger docs
	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/logging"
	"github.com/pickup-archive/pickups-api/internal/middleware"
	"github.com/pickup-archive/pickups-api/internal/routes"
	"github.com/pickup-archive/pickups-api/internal/secrets"
	"github.com/pickup-archive/pickups-api/internal/store"
	"github.com/pickup-archive/pickups-api/internal/tracing"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// @title Pickups API
// @version 1.0
// @description Pickup statistics archive: records, search, player stats and team balancing

// @host localhost:5000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)

	creds, err := resolveCredentials(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to resolve credentials")
	}

	tracingShutdown, err := tracing.Init(cfg, logging.Version(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The listener only starts once MongoDB has answered a ping.
	mongoClient, err := store.ConnectMongo(ctx, &cfg.Mongo, logger)
	if err != nil {
		logger.WithError(err).Fatal("MongoDB never became available")
	}

	pickupStore := store.NewPickupStore(mongoClient, &cfg.Mongo, logger)
	if err := pickupStore.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to ensure pickup indexes")
	}

	dynamoClient, err := store.NewDynamoClient(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize DynamoDB client")
	}
	adminStore := store.NewAdminStore(dynamoClient, cfg.DynamoDB.AdminsTableName)

	middlewareManager, err := middleware.NewManager(cfg, creds, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize middleware manager")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Pickups API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not Found"})
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": middleware.RequestID(c),
			}).Error("Request error")

			return middleware.WriteError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Internal server error", err))
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With,Idempotency-Key",
		// fiber refuses credentials together with a wildcard origin
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	app.Use(otelfiber.Middleware())

	routes.Setup(app, cfg, logger, routes.Dependencies{
		Pickups:     pickupStore,
		Admins:      adminStore,
		Auth:        middlewareManager.Auth,
		JWTSecret:   creds.JWTSecret,
		ErrorLogger: middlewareManager.ErrorLogger,
		RateLimit:   middlewareManager.RateLimit,
		Idempotency: middlewareManager.Idempotency,
		Breaker:     middlewareManager.CircuitBreaker,
		ReadinessChecks: map[string]func() error{
			"mongodb": store.MongoHealthCheck(mongoClient),
			"redis":   middleware.RedisHealthCheck(middlewareManager.RedisClient),
		},
	})

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting Pickups API server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.WithError(err).Error("Server stopped listening")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Gracefully shutting down...")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to disconnect MongoDB")
	}
	if err := middlewareManager.Close(); err != nil {
		logger.WithError(err).Error("Failed to close Redis client")
	}
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shutdown tracing")
	}
}

// resolveCredentials reads the JWT secret and Redis password from Secrets
// Manager when configured, otherwise from the environment.
func resolveCredentials(cfg *config.Config, logger *logrus.Logger) (middleware.Credentials, error) {
	creds := middleware.Credentials{
		JWTSecret:     cfg.JWT.Secret,
		RedisPassword: cfg.Redis.Password,
	}
	if !cfg.JWT.SecretFromSecrets && !cfg.Redis.PasswordFromSecrets {
		return creds, nil
	}

	values, err := secrets.Fetch(&cfg.AWS, logger)
	if err != nil {
		return creds, err
	}

	if cfg.JWT.SecretFromSecrets {
		if creds.JWTSecret, err = secrets.Lookup(values, secrets.KeyJWTSecret); err != nil {
			return creds, err
		}
	}
	if cfg.Redis.PasswordFromSecrets {
		if creds.RedisPassword, err = secrets.Lookup(values, secrets.KeyRedisPassword); err != nil {
			return creds, err
		}
	}
	return creds, nil
}
