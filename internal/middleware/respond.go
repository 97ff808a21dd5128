package middleware

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"
)

const (
	LocalAdminID     = "admin_id"
	LocalAdminClaims = "admin_claims"
	localRequestID   = "requestid"
)

// RequestID returns the id assigned by the requestid middleware, falling back
// to the incoming header.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(localRequestID).(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

// WriteError renders err as the standard error body with its mapped status.
func WriteError(c *fiber.Ctx, err error) error {
	appErr := apperrors.As(err)
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(RequestID(c)))
}
