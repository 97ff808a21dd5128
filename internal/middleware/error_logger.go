package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const maxLoggedBody = 500

type ErrorLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewErrorLoggerMiddleware(logger *logrus.Logger) *ErrorLoggerMiddleware {
	return &ErrorLoggerMiddleware{
		logger: logger,
	}
}

// Handle logs 4xx and 5xx responses with request context. Request bodies are
// never logged since the login body carries a password.
func (e *ErrorLoggerMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				statusCode = fe.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}
		if statusCode < 400 {
			return err
		}

		logFields := logrus.Fields{
			"status_code": statusCode,
			"method":      c.Method(),
			"path":        c.Path(),
			"ip":          c.IP(),
			"user_agent":  c.Get(fiber.HeaderUserAgent),
			"request_id":  RequestID(c),
			"duration_ms": time.Since(startTime).Milliseconds(),
		}

		if adminID := GetAdminID(c); adminID != "" {
			logFields["admin_id"] = adminID
		}

		if q := c.Request().URI().QueryString(); len(q) > 0 {
			logFields["query"] = string(q)
		}

		responseBody := string(c.Response().Body())
		if len(responseBody) > maxLoggedBody {
			responseBody = responseBody[:maxLoggedBody] + "...(truncated)"
		}
		if responseBody != "" {
			logFields["response_body"] = responseBody
		}

		logEntry := e.logger.WithFields(logFields)
		if statusCode >= 500 {
			if err != nil {
				logEntry = logEntry.WithError(err)
			}
			logEntry.Error("Server error response")
		} else {
			logEntry.Warn("Client error response")
		}

		return err
	}
}
