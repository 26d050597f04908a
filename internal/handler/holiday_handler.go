package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// HolidayHandler maintains the school calendar.
type HolidayHandler struct {
	service service.HolidayService
	errors  errorWriter
}

// NewHolidayHandler constructs the handler.
func NewHolidayHandler(service service.HolidayService, logger, errorLog zerolog.Logger) *HolidayHandler {
	logger = logger.With().Str("component", "holiday_handler").Logger()
	return &HolidayHandler{service: service, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register attaches holiday routes to the router group.
func (h *HolidayHandler) Register(router fiber.Router) {
	admin := middleware.RequireRole("admin")
	router.Get("", middleware.RequireRole("admin", "teacher"), h.list)
	router.Post("", admin, h.upsert)
	router.Delete("/:id", admin, h.delete)
}

func (h *HolidayHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), middleware.SchoolID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return h.errors.write(c, err, "list holidays")
	}
	return utils.SendSuccess(c, "holidays retrieved", items)
}

func (h *HolidayHandler) upsert(c *fiber.Ctx) error {
	var payload dto.HolidayRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	holiday, err := h.service.Upsert(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.errors.write(c, err, "save holiday")
	}
	return utils.SendSuccess(c, "holiday saved", holiday)
}

func (h *HolidayHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid holiday id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.errors.write(c, err, "delete holiday")
	}
	return utils.SendSuccess(c, "holiday deleted", fiber.Map{"id": id})
}
