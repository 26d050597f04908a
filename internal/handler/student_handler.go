package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// StudentHandler wires student record endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
	errors  errorWriter
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger, errorLog zerolog.Logger) *StudentHandler {
	logger = logger.With().Str("component", "student_handler").Logger()
	return &StudentHandler{
		service: service,
		logger:  logger,
		errors:  errorWriter{logger: logger, errorLog: errorLog},
	}
}

// Register attaches student routes. Static paths are registered before /:id.
func (h *StudentHandler) Register(router fiber.Router) {
	staff := middleware.RequireRole("admin", "teacher")
	admin := middleware.RequireRole("admin")

	router.Post("/roll-numbers", staff, h.reorderRollNumbers)
	router.Post("", admin, h.create)
	router.Get("", staff, h.list)
	router.Get("/:id", staff, h.get)
	router.Put("/:id", admin, h.update)
	router.Delete("/:id", admin, h.delete)
	router.Put("/:id/restore", admin, h.restore)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.errors.write(c, err, "create student")
	}

	requestLogger(h.logger, c).Info().Uint("student_id", response.Student.ID).Msg("student admitted")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", response)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	classID, err := parseQueryUint(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	sectionID, err := parseQueryUint(c, "section_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.StudentListRequest{
		Page:      page,
		PageSize:  pageSize,
		ClassID:   classID,
		SectionID: sectionID,
		Status:    strings.TrimSpace(c.Query("status")),
		Search:    strings.TrimSpace(c.Query("search")),
		Sort:      c.Query("sort"),
	}

	response, err := h.service.List(c.UserContext(), middleware.SchoolID(c), req)
	if err != nil {
		return h.errors.write(c, err, "list students")
	}

	return utils.OK(c, response.Items, "students retrieved", response.Pagination)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	response, err := h.service.Get(c.UserContext(), middleware.SchoolID(c), id)
	if err != nil {
		return h.errors.write(c, err, "load student")
	}

	return utils.SendSuccess(c, "student retrieved", response)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.errors.write(c, err, "update student")
	}

	return utils.SendSuccess(c, "student updated", response)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.errors.write(c, err, "delete student")
	}

	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

func (h *StudentHandler) restore(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	response, err := h.service.Restore(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.errors.write(c, err, "restore student")
	}

	return utils.SendSuccess(c, "student restored", response)
}

func (h *StudentHandler) reorderRollNumbers(c *fiber.Ctx) error {
	var payload dto.RollNumberRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.ReorderRollNumbers(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.errors.write(c, err, "reorder roll numbers")
	}

	return utils.SendSuccess(c, "roll numbers updated", response)
}
