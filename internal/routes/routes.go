package routes

import (
	"sort"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/logging"
	"github.com/pickup-archive/pickups-api/internal/metrics"
	"github.com/pickup-archive/pickups-api/internal/middleware"
	"github.com/pickup-archive/pickups-api/internal/query"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators built in main. ErrorLogger, RateLimit,
// Idempotency and Breaker may be nil.
type Dependencies struct {
	Pickups         PickupRepository
	Admins          AdminRepository
	Auth            *middleware.AuthMiddleware
	JWTSecret       string
	ErrorLogger     *middleware.ErrorLoggerMiddleware
	RateLimit       *middleware.RateLimitMiddleware
	Idempotency     *middleware.IdempotencyMiddleware
	Breaker         *middleware.CircuitBreaker
	ReadinessChecks map[string]func() error
}

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, deps Dependencies) {
	builder := query.NewBuilder(cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)

	pickupHandler := NewPickupHandler(deps.Pickups, builder, cfg.Pagination.SuggestionLimit, logger)
	statsHandler := NewStatsHandler(deps.Pickups, logger)
	authHandler := NewAuthHandler(deps.Admins, &cfg.JWT, deps.JWTSecret, logger)

	var resetter RateLimitResetter
	if deps.RateLimit != nil {
		resetter = deps.RateLimit
	}
	adminHandler := NewAdminHandler(resetter, logger)

	app.Use(metrics.HTTPMetricsMiddleware())
	errorLogger := deps.ErrorLogger
	if errorLogger == nil {
		errorLogger = middleware.NewErrorLoggerMiddleware(logger)
	}
	app.Use(errorLogger.Handle())
	if deps.RateLimit != nil {
		app.Use(deps.RateLimit.Handle())
	}

	// Health check endpoints (no auth required)
	app.Get("/health", healthCheck)
	app.Get("/readyz", readinessCheck(deps))
	app.Get("/version", versionHandler)

	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	authenticate := deps.Auth.Authenticate()
	idempotent := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Idempotency != nil {
		idempotent = deps.Idempotency.Handle()
	}

	if cfg.Server.PprofEnabled {
		app.Use("/debug/pprof", authenticate, pprof.New())
	}

	// Admin routes. Tokens from an external JWKS issuer replace local login.
	admin := app.Group("/api/admin")
	if cfg.JWT.JWKSEndpoint == "" {
		admin.Post("/login", authHandler.Login)
	}
	admin.Get("/me", authenticate, adminHandler.Me)
	admin.Delete("/ratelimit/:ip", authenticate, adminHandler.ResetRateLimit)

	// Public record routes. Fixed paths are registered before /:id.
	pickups := app.Group("/Pickups")
	pickups.Get("/public", pickupHandler.List)
	pickups.Get("/suggestions", pickupHandler.Suggestions)
	pickups.Get("/stats/:playerName", statsHandler.PlayerStats)
	pickups.Post("/matchmaking", statsHandler.Matchmaking)

	// Protected record routes
	app.Get("/Pickups", authenticate, pickupHandler.List)
	pickups.Get("/player/:playerName", authenticate, pickupHandler.ListByPlayer)
	pickups.Post("/insertPlayer", authenticate, idempotent, pickupHandler.Create)
	pickups.Get("/:id", authenticate, pickupHandler.Get)
	pickups.Put("/:id", authenticate, pickupHandler.Update)
	pickups.Delete("/:id", authenticate, pickupHandler.Delete)

	app.Use(notFoundHandler)
}

// healthCheck reports liveness only.
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /health [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
	})
}

// readinessCheck checks if the service is ready to accept traffic
// @Summary Readiness check
// @Description Pings MongoDB and Redis
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(deps Dependencies) fiber.Handler {
	names := make([]string, 0, len(deps.ReadinessChecks))
	for name := range deps.ReadinessChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		checks := fiber.Map{}
		ready := true
		for _, name := range names {
			if err := deps.ReadinessChecks[name](); err != nil {
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		resp := fiber.Map{
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		}
		if deps.Breaker != nil {
			resp["redis_circuit"] = deps.Breaker.GetStats()
		}

		if !ready {
			resp["status"] = "not ready"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp["status"] = "ready"
		return c.JSON(resp)
	}
}

// versionHandler returns version information
// @Summary Version information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "pickups-api",
		"version": logging.Version(),
	})
}

// notFoundHandler answers every unmatched route.
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Not Found",
	})
}
