package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// FeeHandler manages fees assigned to individual students.
type FeeHandler struct {
	service service.FeeService
	errors  errorWriter
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(service service.FeeService, logger, errorLog zerolog.Logger) *FeeHandler {
	logger = logger.With().Str("component", "fee_handler").Logger()
	return &FeeHandler{service: service, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register attaches fee routes to the students group.
func (h *FeeHandler) Register(router fiber.Router) {
	admin := middleware.RequireRole("admin")
	router.Get("/:student_id/fees", admin, h.list)
	router.Post("/:student_id/fees", admin, h.assign)
}

func (h *FeeHandler) list(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	items, err := h.service.ListByStudent(c.UserContext(), middleware.SchoolID(c), studentID)
	if err != nil {
		return h.errors.write(c, err, "list fees")
	}

	return utils.SendSuccess(c, "fees retrieved", items)
}

func (h *FeeHandler) assign(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.FeeAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	fee, err := h.service.Assign(c.UserContext(), actorFromContext(c), studentID, payload)
	if err != nil {
		return h.errors.write(c, err, "assign fee")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "fee assigned", fee)
}
