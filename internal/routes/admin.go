package routes

import (
	"context"
	"net"
	"time"

	"github.com/pickup-archive/pickups-api/internal/middleware"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RateLimitResetter clears a client's rate limit window.
type RateLimitResetter interface {
	Reset(ctx context.Context, ip string) error
}

type AdminHandler struct {
	rateLimit RateLimitResetter
	logger    *logrus.Logger
}

func NewAdminHandler(rateLimit RateLimitResetter, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		rateLimit: rateLimit,
		logger:    logger,
	}
}

// Me describes the current session.
// @Summary Current admin session
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/admin/me [get]
func (a *AdminHandler) Me(c *fiber.Ctx) error {
	claims := middleware.GetAdminClaims(c)
	resp := fiber.Map{
		"admin_id": middleware.GetAdminID(c),
		"username": claims["username"],
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		resp["expires_at"] = exp.UTC().Format(time.RFC3339)
	}
	return c.JSON(resp)
}

// ResetRateLimit lets an admin unblock a client before its window ends.
// @Summary Reset a client's rate limit window
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param ip path string true "Client IP"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /api/admin/ratelimit/{ip} [delete]
func (a *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	ip := c.Params("ip")
	if net.ParseIP(ip) == nil {
		return respondError(c, a.logger, apperrors.NewAppErrorf(apperrors.CodeBadRequest, nil, "Invalid IP address: %q", ip))
	}

	if a.rateLimit == nil {
		return respondError(c, a.logger, apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Rate limiting is disabled", nil))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := a.rateLimit.Reset(ctx, ip); err != nil {
		a.logger.WithError(err).WithField("ip", ip).Error("Failed to reset rate limit")
		return respondError(c, a.logger, apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Rate limit store unavailable", err))
	}

	a.logger.WithFields(logrus.Fields{
		"ip":       ip,
		"admin_id": middleware.GetAdminID(c),
	}).Info("Rate limit window reset")

	return c.JSON(fiber.Map{"ip": ip, "reset": true})
}
