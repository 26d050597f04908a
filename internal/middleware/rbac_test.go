package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func withLocals(values map[string]interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for key, value := range values {
			c.Locals(key, value)
		}
		return c.Next()
	}
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withLocals(map[string]interface{}{LocalUserRole: "Admin"}))
	app.Use(RequireRole("admin", "teacher"))
	app.Get("/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withLocals(map[string]interface{}{LocalUserRole: "student"}))
	app.Use(RequireRole("admin", "teacher"))
	app.Get("/students", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireSchool(t *testing.T) {
	cases := []struct {
		name   string
		locals map[string]interface{}
		status int
	}{
		{"tenant bound", map[string]interface{}{LocalUserID: uint(4), LocalSchoolID: uint(2)}, fiber.StatusOK},
		{"no school", map[string]interface{}{LocalUserID: uint(4)}, fiber.StatusForbidden},
		{"no user", map[string]interface{}{LocalSchoolID: uint(2)}, fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(withLocals(tc.locals))
			app.Use(RequireSchool())
			app.Get("/", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
