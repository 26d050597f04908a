package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
)

func TestErrorWriterMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.Validation("bad date"), fiber.StatusBadRequest},
		{apperr.Unauthorized("who are you"), fiber.StatusUnauthorized},
		{apperr.Forbidden("nope"), fiber.StatusForbidden},
		{apperr.NotFound("student not found"), fiber.StatusNotFound},
		{apperr.Conflict("duplicate admission number", nil), fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		writer := errorWriter{logger: zerolog.Nop(), errorLog: zerolog.Nop()}
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return writer.write(c, tc.err, "do thing") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}

func TestErrorWriterRecordsInternalErrors(t *testing.T) {
	var errorLog bytes.Buffer
	writer := errorWriter{logger: zerolog.Nop(), errorLog: zerolog.New(&errorLog)}

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Post("/students/promote", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalSchoolID, uint(7))
		return writer.write(c, apperr.Internal("promotion aborted, no students were changed", errors.New("relation missing")), "promote students")
	})

	req := httptest.NewRequest(http.MethodPost, "/students/promote", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "promotion aborted, no students were changed", payload.Message)
	require.Equal(t, "corr-123", payload.Details["correlation_id"])

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(errorLog.Bytes(), &entry))
	require.Equal(t, "corr-123", entry["correlation_id"])
	require.Equal(t, "/students/promote", entry["path"])
	require.EqualValues(t, 7, entry["school_id"])
	require.Contains(t, entry["error"], "relation missing")
}

func TestErrorWriterDoesNotLogClientErrors(t *testing.T) {
	var errorLog bytes.Buffer
	writer := errorWriter{logger: zerolog.Nop(), errorLog: zerolog.New(&errorLog)}

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writer.write(c, apperr.NotFound(""), "load student") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Zero(t, errorLog.Len())
}
