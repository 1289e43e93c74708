package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"murmur/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "auth-middleware-test-secret"

func signTestToken(t *testing.T, userID uint, jti string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": now.Add(expiresIn).Unix(),
		"iat": now.Unix(),
	}
	if jti != "" {
		claims["jti"] = jti
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthTestApp(t *testing.T) *fiber.App {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: testSecret})
	t.Cleanup(func() { TokenRevoked = nil })

	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("userID"),
			"jti":     c.Locals("tokenJTI"),
		})
	})
	return app
}

func requestWithAuth(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAuthRequired(t *testing.T) {
	app := newAuthTestApp(t)

	t.Run("valid token", func(t *testing.T) {
		token := signTestToken(t, 42, "jti-1", time.Hour)
		resp := requestWithAuth(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing header", func(t *testing.T) {
		resp := requestWithAuth(t, app, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		resp := requestWithAuth(t, app, "NotBearer xyz")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signTestToken(t, 42, "jti-2", -time.Hour)
		resp := requestWithAuth(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		resp := requestWithAuth(t, app, "Bearer "+forged)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-numeric subject", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "not-a-number",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		resp := requestWithAuth(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired_RevocationHook(t *testing.T) {
	app := newAuthTestApp(t)

	revoked := map[string]bool{"revoked-jti": true}
	TokenRevoked = func(c *fiber.Ctx, jti string) bool {
		return revoked[jti]
	}

	resp := requestWithAuth(t, app, "Bearer "+signTestToken(t, 1, "revoked-jti", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = requestWithAuth(t, app, "Bearer "+signTestToken(t, 1, "live-jti", time.Hour))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired_NoHookAllowsAllJTIs(t *testing.T) {
	app := newAuthTestApp(t)
	TokenRevoked = nil

	resp := requestWithAuth(t, app, "Bearer "+signTestToken(t, 1, "any-jti", time.Hour))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
