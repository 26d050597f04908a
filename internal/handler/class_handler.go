package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// ClassHandler manages classes and their sections.
type ClassHandler struct {
	service service.ClassService
	errors  errorWriter
}

// NewClassHandler constructs the handler.
func NewClassHandler(service service.ClassService, logger, errorLog zerolog.Logger) *ClassHandler {
	logger = logger.With().Str("component", "class_handler").Logger()
	return &ClassHandler{service: service, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register attaches class routes to the router group.
func (h *ClassHandler) Register(router fiber.Router) {
	admin := middleware.RequireRole("admin")
	router.Get("", middleware.RequireRole("admin", "teacher"), h.list)
	router.Post("", admin, h.create)
	router.Post("/:id/sections", admin, h.createSection)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), middleware.SchoolID(c))
	if err != nil {
		return h.errors.write(c, err, "list classes")
	}
	return utils.SendSuccess(c, "classes retrieved", items)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	class, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.errors.write(c, err, "create class")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) createSection(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.SectionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	section, err := h.service.CreateSection(c.UserContext(), actorFromContext(c), classID, payload)
	if err != nil {
		return h.errors.write(c, err, "create section")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "section created", section)
}
