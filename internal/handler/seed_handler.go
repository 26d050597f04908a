package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for provisioning schools.
type SeedHandler struct {
	service service.SeedService
	errors  errorWriter
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger, errorLog zerolog.Logger) *SeedHandler {
	logger = logger.With().Str("component", "seed_handler").Logger()
	return &SeedHandler{service: service, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register wires seed routes. Callers authenticate with X-Seed-Token.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/schools", h.schools)
}

func (h *SeedHandler) schools(c *fiber.Ctx) error {
	var payload dto.SchoolSeedRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.BootstrapSchool(c.UserContext(), c.Get("X-Seed-Token"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusForbidden, "invalid token")
		default:
			return h.errors.write(c, err, "bootstrap school")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school bootstrapped", response)
}
