package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// NotificationHandler lists guardian notifications sent for a student.
type NotificationHandler struct {
	service service.NotificationService
	errors  errorWriter
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger, errorLog zerolog.Logger) *NotificationHandler {
	logger = logger.With().Str("component", "notification_handler").Logger()
	return &NotificationHandler{service: service, errors: errorWriter{logger: logger, errorLog: errorLog}}
}

// Register binds the notification routes to the students group.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/:student_id/notifications", middleware.RequireRole("admin", "teacher"), h.list)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.ListByStudent(c.UserContext(), middleware.SchoolID(c), studentID, limit)
	if err != nil {
		return h.errors.write(c, err, "list notifications")
	}

	return utils.SendSuccess(c, "notifications retrieved", items)
}
