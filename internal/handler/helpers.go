package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(value), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func errInvalidQuery(key string) error {
	return fmt.Errorf("invalid %s", key)
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return nil, errInvalidQuery(key)
	}
	id := uint(parsed)
	return &id, nil
}

func parsePagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page size")
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		SchoolID: middleware.SchoolID(c),
		UserID:   middleware.UserID(c),
		Role:     middleware.UserRole(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorWriter maps service errors onto the response envelope. Unexpected
// failures are also appended to the error log with the request context.
type errorWriter struct {
	logger   zerolog.Logger
	errorLog zerolog.Logger
}

func (w errorWriter) write(c *fiber.Ctx, err error, action string) error {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)
	message := apperr.MessageOf(err)

	if kind == apperr.KindInternal {
		correlationID := middleware.GetCorrelationID(c)
		requestLogger(w.logger, c).Error().Err(err).Msg("failed to " + action)
		w.errorLog.Error().
			Err(err).
			Str("correlation_id", correlationID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Uint("school_id", middleware.SchoolID(c)).
			Uint("user_id", middleware.UserID(c)).
			Msg("failed to " + action)
		if message == "" {
			message = "failed to " + action
		}
		return utils.Fail(c, status, message, fiber.Map{"correlation_id": correlationID})
	}

	if message == "" {
		switch kind {
		case apperr.KindNotFound:
			message = "resource not found"
		case apperr.KindConflict:
			message = "resource already exists"
		default:
			message = err.Error()
		}
	}
	return utils.Fail(c, status, message, apperr.DetailsOf(err))
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
}
