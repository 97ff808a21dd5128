package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Issuer:   "pickup-archive",
		Audience: "pickup-archive-admin",
		TokenTTL: time.Hour,
	}
}

func signToken(t *testing.T, secret string, mutate func(jwt.MapClaims)) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      "admin-1",
		"username": "archivist",
		"role":     RoleAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
		"iss":      "pickup-archive",
		"aud":      "pickup-archive-admin",
	}
	if mutate != nil {
		mutate(claims)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	auth, err := NewAuthMiddleware(testJWTConfig(), testSecret, quietLogger())
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/Pickups", auth.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString(GetAdminID(c))
	})
	return app
}

func authRequest(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/Pickups", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticate_MissingHeaderIsForbidden(t *testing.T) {
	status, body := authRequest(t, newAuthApp(t), "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "No token provided")
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	app := newAuthApp(t)

	tests := []struct {
		name   string
		header string
	}{
		{"not bearer", "Token abc"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", nil)},
		{"expired", "Bearer " + signToken(t, testSecret, func(c jwt.MapClaims) {
			c["exp"] = time.Now().Add(-time.Minute).Unix()
		})},
		{"no exp", "Bearer " + signToken(t, testSecret, func(c jwt.MapClaims) { delete(c, "exp") })},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, func(c jwt.MapClaims) { c["iss"] = "someone-else" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := authRequest(t, app, tt.header)
			assert.Equal(t, fiber.StatusUnauthorized, status)
		})
	}
}

func TestAuthenticate_NonAdminRoleIsForbidden(t *testing.T) {
	token := signToken(t, testSecret, func(c jwt.MapClaims) { c["role"] = "viewer" })
	status, _ := authRequest(t, newAuthApp(t), "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAuthenticate_ValidTokenSetsAdminID(t *testing.T) {
	status, body := authRequest(t, newAuthApp(t), "Bearer "+signToken(t, testSecret, nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin-1", body)
}

func TestNewAuthMiddleware_RequiresSecretWithoutJWKS(t *testing.T) {
	_, err := NewAuthMiddleware(testJWTConfig(), "", quietLogger())
	assert.Error(t, err)
}
