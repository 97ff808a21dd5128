package routes

import (
	"context"
	"errors"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/metrics"
	"github.com/pickup-archive/pickups-api/internal/middleware"
	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/store"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AdminRepository looks up the admin credential.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// AuthHandler handles the admin login endpoint
type AuthHandler struct {
	admins    AdminRepository
	jwtConfig *config.JWTConfig
	jwtSecret []byte
	logger    *logrus.Logger
	now       func() time.Time
}

func NewAuthHandler(admins AdminRepository, jwtConfig *config.JWTConfig, jwtSecret string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		admins:    admins,
		jwtConfig: jwtConfig,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
		now:       time.Now,
	}
}

// Login handles admin login
// @Summary Admin login
// @Description Exchange the admin credential for a short-lived bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 401 {object} apperrors.ErrorResponse "Invalid credentials"
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}

	admin, err := h.admins.GetByUsername(c.UserContext(), req.Username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordLoginAttempt("unknown_user")
		h.logger.WithField("username", req.Username).Warn("Login for unknown admin")
		return h.invalidCredentials(c)
	case err != nil:
		metrics.RecordLoginAttempt("error")
		return respondError(c, h.logger, err)
	}

	if !admin.CheckPassword(req.Password) {
		metrics.RecordLoginAttempt("bad_password")
		h.logger.WithField("username", req.Username).Warn("Invalid admin password")
		return h.invalidCredentials(c)
	}

	token, expiresIn, err := h.generateJWT(admin)
	if err != nil {
		metrics.RecordLoginAttempt("error")
		return respondError(c, h.logger, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to generate token", err))
	}

	metrics.RecordLoginAttempt("success")
	h.logger.WithFields(logrus.Fields{
		"admin_id": admin.AdminID,
		"username": admin.Username,
	}).Info("Admin logged in")

	return c.JSON(models.LoginResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// invalidCredentials is the single answer for unknown user and wrong password.
func (h *AuthHandler) invalidCredentials(c *fiber.Ctx) error {
	return middleware.WriteError(c, apperrors.NewAppError(apperrors.CodeUnauthenticated, "Invalid credentials", nil))
}

func (h *AuthHandler) generateJWT(admin *models.Admin) (string, int, error) {
	now := h.now()
	expiresAt := now.Add(h.jwtConfig.TokenTTL)

	claims := jwt.MapClaims{
		"sub":      admin.AdminID,
		"username": admin.Username,
		"role":     middleware.RoleAdmin,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	}
	if h.jwtConfig.Issuer != "" {
		claims["iss"] = h.jwtConfig.Issuer
	}
	if h.jwtConfig.Audience != "" {
		claims["aud"] = h.jwtConfig.Audience
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(h.jwtConfig.TokenTTL.Seconds()), nil
}
