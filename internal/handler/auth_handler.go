package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// AuthHandler issues access tokens.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
	errors  errorWriter
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger, errorLog zerolog.Logger) *AuthHandler {
	logger = logger.With().Str("component", "auth_handler").Logger()
	return &AuthHandler{service: service, logger: logger, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register attaches the public auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			requestLogger(h.logger, c).Warn().Str("school_code", payload.SchoolCode).Msg("login rejected")
		}
		return h.errors.write(c, err, "log in")
	}

	return utils.SendSuccess(c, "login successful", response)
}
