package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newJWTApp() *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(JWTProtected(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":        UserID(c),
			"school_id":      SchoolID(c),
			"role":           UserRole(c),
			"correlation_id": GetCorrelationID(c),
		})
	})
	return app
}

func TestJWTProtectedExposesClaims(t *testing.T) {
	app := newJWTApp()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":       "12",
		"school_id": 3,
		"role":      "Teacher",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "req-1", resp.Header.Get("X-Correlation-ID"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, float64(12), body["user_id"])
	require.Equal(t, float64(3), body["school_id"])
	require.Equal(t, "teacher", body["role"])
	require.Equal(t, "req-1", body["correlation_id"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newJWTApp()
	expired := signToken(t, testSecret, jwt.MapClaims{"sub": 1, "exp": time.Now().Add(-time.Hour).Unix()})
	foreign := signToken(t, "other-secret", jwt.MapClaims{"sub": 1})

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer " + expired, "Bearer " + foreign} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
}

func TestRateLimitKeysByUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, uint(7))
		c.Locals(LocalSchoolID, uint(1))
		return c.Next()
	})
	app.Use(RateLimit("attendance", 2, time.Minute))
	app.Post("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	require.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, statuses)
}
