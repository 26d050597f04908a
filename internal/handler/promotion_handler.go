package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// PromotionHandler exposes the promotion workflow and its history.
type PromotionHandler struct {
	service service.PromotionService
	logger  zerolog.Logger
	errors  errorWriter
}

// NewPromotionHandler constructs the handler.
func NewPromotionHandler(service service.PromotionService, logger, errorLog zerolog.Logger) *PromotionHandler {
	logger = logger.With().Str("component", "promotion_handler").Logger()
	return &PromotionHandler{
		service: service,
		logger:  logger,
		errors:  errorWriter{logger: logger, errorLog: errorLog},
	}
}

// Register attaches promotion routes to the students group.
func (h *PromotionHandler) Register(router fiber.Router) {
	router.Post("/promote", middleware.RequireRole("admin"), h.promote)
	router.Get("/:student_id/promotion-history", middleware.RequireRole("admin", "teacher"), h.history)
}

func (h *PromotionHandler) promote(c *fiber.Ctx) error {
	var payload dto.PromotionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", fiber.Map{"error": err.Error()})
	}

	response, err := h.service.Promote(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.errors.write(c, err, "promote students")
	}

	message := "students promoted"
	if len(response.Errors) > 0 {
		message = "students promoted with errors"
	}
	requestLogger(h.logger, c).Info().
		Int("promoted", response.PromotedCount).
		Int("failed", len(response.Errors)).
		Msg("promotion batch committed")

	return utils.SendSuccess(c, message, response)
}

func (h *PromotionHandler) history(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	items, err := h.service.History(c.UserContext(), middleware.SchoolID(c), studentID)
	if err != nil {
		return h.errors.write(c, err, "load promotion history")
	}

	return utils.SendSuccess(c, "promotion history retrieved", items)
}
