package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// ActivityHandler exposes the school's audit trail.
type ActivityHandler struct {
	service service.ActivityService
	errors  errorWriter
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger, errorLog zerolog.Logger) *ActivityHandler {
	logger = logger.With().Str("component", "activity_handler").Logger()
	return &ActivityHandler{service: service, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register attaches activity log routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", middleware.RequireRole("admin"), h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actorID, err := parseQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}
	entityID, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity id")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if actorID != nil {
		req.ActorID = *actorID
	}
	if entityID != nil {
		req.EntityID = *entityID
	}

	response, err := h.service.List(c.UserContext(), middleware.SchoolID(c), req)
	if err != nil {
		return h.errors.write(c, err, "list activity logs")
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}
