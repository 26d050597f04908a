package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// AttendanceHandler exposes attendance marking and reporting.
type AttendanceHandler struct {
	service   service.AttendanceService
	logger    zerolog.Logger
	errors    errorWriter
	markLimit fiber.Handler
}

// NewAttendanceHandler constructs the handler. markLimit guards the bulk mark
// endpoint and may be nil.
func NewAttendanceHandler(service service.AttendanceService, logger, errorLog zerolog.Logger, markLimit fiber.Handler) *AttendanceHandler {
	logger = logger.With().Str("component", "attendance_handler").Logger()
	if markLimit == nil {
		markLimit = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AttendanceHandler{
		service:   service,
		logger:    logger,
		errors:    errorWriter{logger: logger, errorLog: errorLog},
		markLimit: markLimit,
	}
}

// Register attaches attendance routes to the router group.
func (h *AttendanceHandler) Register(router fiber.Router) {
	staff := middleware.RequireRole("admin", "teacher")

	router.Post("", staff, h.markLimit, h.mark)
	router.Get("", staff, h.listByDate)
	router.Get("/summary", staff, h.summary)
	router.Get("/daily", staff, h.daily)
	router.Get("/report", staff, h.monthlyReport)
	router.Get("/my-report", middleware.WithAuth(h.myReport, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

func (h *AttendanceHandler) mark(c *fiber.Ctx) error {
	var payload dto.AttendanceMarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	response, err := h.service.Mark(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.errors.write(c, err, "mark attendance")
	}

	return utils.SendSuccess(c, "attendance marked", response)
}

func (h *AttendanceHandler) listByDate(c *fiber.Ctx) error {
	query, err := attendanceQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if query.Date == "" {
		query.Date = time.Now().UTC().Format(dto.DateLayout)
	}

	response, err := h.service.ListByDate(c.UserContext(), middleware.SchoolID(c), query)
	if err != nil {
		return h.errors.write(c, err, "list attendance")
	}

	return utils.SendSuccess(c, "attendance retrieved", response)
}

func (h *AttendanceHandler) summary(c *fiber.Ctx) error {
	query, err := attendanceQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Summary(c.UserContext(), middleware.SchoolID(c), query)
	if err != nil {
		return h.errors.write(c, err, "summarise attendance")
	}

	return utils.SendSuccess(c, "attendance summary retrieved", response)
}

func (h *AttendanceHandler) daily(c *fiber.Ctx) error {
	query, err := attendanceQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Daily(c.UserContext(), middleware.SchoolID(c), query)
	if err != nil {
		return h.errors.write(c, err, "load daily attendance")
	}

	return utils.SendSuccess(c, "daily attendance retrieved", response)
}

func (h *AttendanceHandler) monthlyReport(c *fiber.Ctx) error {
	year, month, err := parseYearMonth(c)
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

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.MonthlyReportRequest{Year: year, Month: month, ClassID: classID, SectionID: sectionID, StudentID: studentID}
	response, err := h.service.MonthlyReport(c.UserContext(), middleware.SchoolID(c), req)
	if err != nil {
		return h.errors.write(c, err, "build attendance report")
	}

	c.Set("X-Cache-Hit", strconv.FormatBool(response.CacheHit))
	return utils.SendSuccess(c, "attendance report retrieved", response)
}

func (h *AttendanceHandler) myReport(c *fiber.Ctx) error {
	year, month, err := parseYearMonth(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.MyReport(c.UserContext(), actorFromContext(c), year, month)
	if err != nil {
		return h.errors.write(c, err, "build attendance report")
	}

	return utils.SendSuccess(c, "attendance report retrieved", response)
}

func attendanceQuery(c *fiber.Ctx) (dto.AttendanceQuery, error) {
	classID, err := parseQueryUint(c, "class_id")
	if err != nil {
		return dto.AttendanceQuery{}, err
	}
	sectionID, err := parseQueryUint(c, "section_id")
	if err != nil {
		return dto.AttendanceQuery{}, err
	}

	return dto.AttendanceQuery{
		Date:      c.Query("date"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		ClassID:   classID,
		SectionID: sectionID,
	}, nil
}

func parseYearMonth(c *fiber.Ctx) (int, int, error) {
	year, err := parseQueryInt(c, "year")
	if err != nil {
		return 0, 0, errInvalidQuery("year")
	}
	month, err := parseQueryInt(c, "month")
	if err != nil {
		return 0, 0, errInvalidQuery("month")
	}
	return year, month, nil
}
