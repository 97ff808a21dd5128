package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
)

const RoleAdmin = "admin"

type AuthMiddleware struct {
	config   *config.JWTConfig
	secret   []byte
	logger   *logrus.Logger
	jwkCache *jwk.Cache // nil unless an external JWKS issuer is configured
}

// NewAuthMiddleware verifies HS256 tokens signed with secret. When
// cfg.JWKSEndpoint is set, tokens are verified against that key set instead.
func NewAuthMiddleware(cfg *config.JWTConfig, secret string, logger *logrus.Logger) (*AuthMiddleware, error) {
	a := &AuthMiddleware{
		config: cfg,
		secret: []byte(secret),
		logger: logger,
	}

	if cfg.JWKSEndpoint == "" {
		if secret == "" {
			return nil, fmt.Errorf("jwt secret is empty")
		}
		return a, nil
	}

	cache := jwk.NewCache(context.Background())
	if err := cache.Register(cfg.JWKSEndpoint, jwk.WithMinRefreshInterval(cfg.CacheTTL)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := cache.Refresh(ctx, cfg.JWKSEndpoint); err != nil {
		logger.WithError(err).Warn("Failed to pre-fetch JWKS, will try during first request")
	}

	a.jwkCache = cache
	return a, nil
}

// Authenticate rejects requests without a valid admin bearer token. A missing
// header is 403, anything malformed or unverifiable is 401.
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return WriteError(c, apperrors.NewAppError(apperrors.CodeForbidden, "No token provided", nil))
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return WriteError(c, apperrors.NewAppError(apperrors.CodeUnauthenticated, "Invalid token format", nil))
		}

		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if tokenString == "" {
			return WriteError(c, apperrors.NewAppError(apperrors.CodeUnauthenticated, "Invalid token format", nil))
		}

		claims, err := a.ValidateToken(c.UserContext(), tokenString)
		if err != nil {
			a.logger.WithError(err).WithField("path", c.Path()).Debug("Token validation failed")
			return WriteError(c, apperrors.NewAppError(apperrors.CodeUnauthenticated, "Invalid token", err))
		}

		if role, _ := claims["role"].(string); role != RoleAdmin {
			return WriteError(c, apperrors.NewAppError(apperrors.CodeForbidden, "Admin role required", nil))
		}

		c.Locals(LocalAdminClaims, claims)
		if sub, err := claims.GetSubject(); err == nil {
			c.Locals(LocalAdminID, sub)
		}

		return c.Next()
	}
}

// ValidateToken checks signature, expiry and, when configured, issuer and
// audience.
func (a *AuthMiddleware) ValidateToken(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if a.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.config.Issuer))
	}
	if a.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.config.Audience))
	}

	var keyFunc jwt.Keyfunc
	if a.jwkCache != nil {
		keyFunc = a.jwksKey(ctx)
		opts = append(opts, jwt.WithValidMethods([]string{"RS256", "ES256"}))
	} else {
		keyFunc = func(*jwt.Token) (interface{}, error) { return a.secret, nil }
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	}

	token, err := jwt.Parse(tokenString, keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	return claims, nil
}

func (a *AuthMiddleware) jwksKey(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		keyID, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid not found in token header")
		}

		set, err := a.jwkCache.Get(ctx, a.config.JWKSEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to get JWK set: %w", err)
		}

		key, found := set.LookupKeyID(keyID)
		if !found {
			return nil, fmt.Errorf("key with ID %s not found", keyID)
		}

		var verifyKey interface{}
		if err := key.Raw(&verifyKey); err != nil {
			return nil, fmt.Errorf("failed to get raw key: %w", err)
		}

		return verifyKey, nil
	}
}

// GetAdminID returns the authenticated admin id, or "" on public routes.
func GetAdminID(c *fiber.Ctx) string {
	if adminID, ok := c.Locals(LocalAdminID).(string); ok {
		return adminID
	}
	return ""
}

// GetAdminClaims returns the verified token claims.
func GetAdminClaims(c *fiber.Ctx) jwt.MapClaims {
	if claims, ok := c.Locals(LocalAdminClaims).(jwt.MapClaims); ok {
		return claims
	}
	return nil
}
