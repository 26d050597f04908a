package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/config"
	"github.com/noah-isme/sekolah-go-api/internal/handler"
)

func TestHealthCheckReportsProbes(t *testing.T) {
	cfg := config.Config{AppName: "sekolah-api", AppEnv: "test"}
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(cfg, map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health handler.HealthResponse
	decodeData(t, body, &health)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "sekolah-api", health.Service)
	require.Equal(t, "up", health.Checks["database"])
	require.Equal(t, "down", health.Checks["redis"])
}

func TestHealthCheckWithoutProbes(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "sekolah-api"}, nil))

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health handler.HealthResponse
	decodeData(t, body, &health)
	require.Equal(t, "ok", health.Status)
	require.Empty(t, health.Checks)
}
