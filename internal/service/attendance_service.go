package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/observability"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

const maxAttendanceRangeDays = 366

// AttendanceService marks attendance and composes attendance reads.
type AttendanceService interface {
	Mark(ctx context.Context, actor Actor, req dto.AttendanceMarkRequest) (dto.AttendanceMarkResponse, error)
	ListByDate(ctx context.Context, schoolID uint, query dto.AttendanceQuery) (dto.AttendanceListResponse, error)
	Summary(ctx context.Context, schoolID uint, query dto.AttendanceQuery) (dto.AttendanceSummaryResponse, error)
	Daily(ctx context.Context, schoolID uint, query dto.AttendanceQuery) (dto.DailyAttendanceResponse, error)
	MonthlyReport(ctx context.Context, schoolID uint, req dto.MonthlyReportRequest) (dto.MonthlyReportResponse, error)
	MyReport(ctx context.Context, actor Actor, year, month int) (dto.MonthlyReportResponse, error)
}

type attendanceService struct {
	store     *repository.Store
	validator *validator.Validate
	notifier  Notifier
	cache     *ReportCache
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service. notifier and cache may be nil.
func NewAttendanceService(store *repository.Store, validate *validator.Validate, notifier Notifier, cache *ReportCache, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		store:     store,
		validator: validate,
		notifier:  notifier,
		cache:     cache,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sekolah-go-api/internal/service/attendance"),
		now:       time.Now,
	}
}

// Mark upserts every status in one statement. Re-marking a student for the
// same date overwrites the earlier status. Guardian notifications are queued
// only after the write commits and never fail the request.
func (s *attendanceService) Mark(ctx context.Context, actor Actor, req dto.AttendanceMarkRequest) (dto.AttendanceMarkResponse, error) {
	if len(req.AttendanceData) == 0 {
		return dto.AttendanceMarkResponse{}, apperr.Validation("attendanceData must contain at least one entry")
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceMarkResponse{}, err
	}

	day, err := dto.ParseDate(req.Date)
	if err != nil {
		return dto.AttendanceMarkResponse{}, apperr.Validation(err.Error())
	}

	marks, invalid := normalizeMarks(req.AttendanceData)
	if len(invalid) > 0 {
		return dto.AttendanceMarkResponse{}, apperr.ValidationWithDetails("invalid attendance status", invalid)
	}

	spanCtx, span := s.tracer.Start(ctx, "attendance.mark", trace.WithAttributes(
		attribute.Int64("school.id", int64(actor.SchoolID)),
		attribute.Int("attendance.count", len(marks)),
	))
	defer span.End()

	date := models.DateOf(day)
	ids := make([]uint, 0, len(marks))
	for _, mark := range marks {
		ids = append(ids, mark.StudentID)
	}

	var students map[uint]models.Student
	err = s.store.Transaction(spanCtx, func(tx *repository.Store) error {
		found, err := tx.Students.GetByIDs(spanCtx, actor.SchoolID, ids)
		if err != nil {
			return err
		}
		students = make(map[uint]models.Student, len(found))
		for _, student := range found {
			if !student.IsDeleted() {
				students[student.ID] = student
			}
		}

		missing := make([]apperr.ItemError, 0)
		for _, id := range ids {
			if _, ok := students[id]; !ok {
				missing = append(missing, apperr.ItemError{ID: id, Reason: "student not found"})
			}
		}
		if len(missing) > 0 {
			return apperr.ValidationWithDetails("attendance references unknown students", missing)
		}

		_, err = tx.Attendance.BulkUpsert(spanCtx, actor.SchoolID, date, marks, markedBy(actor))
		return err
	})
	if err != nil {
		span.RecordError(err)
		return dto.AttendanceMarkResponse{}, err
	}

	for _, mark := range marks {
		observability.AttendanceMarks().WithLabelValues(mark.Status).Inc()
	}
	s.cache.Invalidate(spanCtx, actor.SchoolID)

	response := dto.AttendanceMarkResponse{Date: dto.FormatDate(date), Marked: len(marks)}
	response.Notified = s.notify(actor.SchoolID, response.Date, marks, students)

	s.logger.Info().
		Uint("school_id", actor.SchoolID).
		Str("date", response.Date).
		Int("marked", response.Marked).
		Msg("attendance marked")

	return response, nil
}

func (s *attendanceService) notify(schoolID uint, date string, marks []repository.AttendanceMark, students map[uint]models.Student) int {
	if s.notifier == nil {
		return 0
	}

	queued := 0
	for _, mark := range marks {
		if !notifiableStatus(mark.Status) {
			continue
		}
		student := students[mark.StudentID]
		if student.GuardianEmail == "" && student.GuardianPhone == "" {
			continue
		}
		if s.notifier.Enqueue(AttendanceNotice{
			SchoolID:      schoolID,
			StudentID:     student.ID,
			StudentName:   student.Name,
			GuardianName:  student.GuardianName,
			GuardianEmail: student.GuardianEmail,
			GuardianPhone: student.GuardianPhone,
			Date:          date,
			Status:        mark.Status,
		}) {
			queued++
		}
	}
	return queued
}

func (s *attendanceService) ListByDate(ctx context.Context, schoolID uint, query dto.AttendanceQuery) (dto.AttendanceListResponse, error) {
	day := s.today()
	if strings.TrimSpace(query.Date) != "" {
		parsed, err := dto.ParseDate(query.Date)
		if err != nil {
			return dto.AttendanceListResponse{}, apperr.Validation(err.Error())
		}
		day = parsed
	}
	date := models.DateOf(day)

	rows, err := s.store.Attendance.ListByDate(ctx, schoolID, date, scopeOf(query.ClassID, query.SectionID))
	if err != nil {
		return dto.AttendanceListResponse{}, err
	}
	holidays, err := s.store.Holidays.List(ctx, schoolID, date, date)
	if err != nil {
		return dto.AttendanceListResponse{}, err
	}

	response := dto.AttendanceListResponse{Date: dto.FormatDate(date), Records: make([]dto.AttendanceDayRecord, 0, len(rows))}
	if len(holidays) > 0 {
		response.Holiday = true
		response.HolidayName = holidays[0].Name
	}

	for _, row := range rows {
		status := models.AttendanceStatusUnmarked
		switch {
		case row.Status != nil:
			status = *row.Status
		case response.Holiday:
			status = models.AttendanceStatusHoliday
		}
		response.Records = append(response.Records, dto.AttendanceDayRecord{
			StudentID:   row.StudentID,
			AdmissionNo: row.AdmissionNo,
			Name:        row.Name,
			RollNumber:  row.RollNumber,
			Status:      status,
		})
	}

	return response, nil
}

func (s *attendanceService) Summary(ctx context.Context, schoolID uint, query dto.AttendanceQuery) (dto.AttendanceSummaryResponse, error) {
	from, to, err := s.resolveRange(query)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	rows, err := s.store.Attendance.Summary(ctx, schoolID, scopeOf(query.ClassID, query.SectionID), from, to)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	items := make([]dto.AttendanceSummaryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.AttendanceSummaryItem{
			StudentID:   row.StudentID,
			AdmissionNo: row.AdmissionNo,
			Name:        row.Name,
			RollNumber:  row.RollNumber,
			Present:     row.Present,
			Absent:      row.Absent,
			Late:        row.Late,
			HalfDay:     row.HalfDay,
			Marked:      row.Total,
			Percentage:  attendancePercentage(row),
		})
	}

	return dto.AttendanceSummaryResponse{From: dto.FormatDate(from), To: dto.FormatDate(to), Items: items}, nil
}

func (s *attendanceService) Daily(ctx context.Context, schoolID uint, query dto.AttendanceQuery) (dto.DailyAttendanceResponse, error) {
	from, to, err := s.resolveRange(query)
	if err != nil {
		return dto.DailyAttendanceResponse{}, err
	}

	students, _, err := s.store.Students.List(ctx, schoolID, repository.StudentFilter{ClassID: query.ClassID, SectionID: query.SectionID})
	if err != nil {
		return dto.DailyAttendanceResponse{}, err
	}
	ids := make([]uint, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	records, err := s.store.Attendance.ListRange(ctx, schoolID, ids, from, to)
	if err != nil {
		return dto.DailyAttendanceResponse{}, err
	}
	holidays, err := s.store.Holidays.List(ctx, schoolID, from, to)
	if err != nil {
		return dto.DailyAttendanceResponse{}, err
	}

	byDate := make(map[string]map[string]int)
	for _, record := range records {
		key := dto.FormatDate(record.Date)
		if byDate[key] == nil {
			byDate[key] = make(map[string]int)
		}
		byDate[key][record.Status]++
	}
	holidayNames := holidayIndex(holidays)

	response := dto.DailyAttendanceResponse{From: dto.FormatDate(from), To: dto.FormatDate(to), Students: len(students)}
	for day := time.Time(from); !day.After(time.Time(to)); day = day.AddDate(0, 0, 1) {
		key := day.Format(dto.DateLayout)
		counts := byDate[key]
		totals := dto.DailyAttendanceTotals{
			Date:     key,
			Present:  counts[models.AttendanceStatusPresent],
			Absent:   counts[models.AttendanceStatusAbsent],
			Late:     counts[models.AttendanceStatusLate],
			HalfDay:  counts[models.AttendanceStatusHalfDay],
			Unmarked: len(students) - sumCounts(counts),
		}
		if name, ok := holidayNames[key]; ok {
			totals.Holiday = true
			totals.HolidayName = name
			totals.Unmarked = 0
		}
		response.Days = append(response.Days, totals)
	}

	return response, nil
}

func (s *attendanceService) resolveRange(query dto.AttendanceQuery) (datatypes.Date, datatypes.Date, error) {
	today := s.today()
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := today

	if strings.TrimSpace(query.From) != "" {
		parsed, err := dto.ParseDate(query.From)
		if err != nil {
			return datatypes.Date{}, datatypes.Date{}, apperr.Validation(err.Error())
		}
		from = parsed
	}
	if strings.TrimSpace(query.To) != "" {
		parsed, err := dto.ParseDate(query.To)
		if err != nil {
			return datatypes.Date{}, datatypes.Date{}, apperr.Validation(err.Error())
		}
		to = parsed
	}

	if to.Before(from) {
		return datatypes.Date{}, datatypes.Date{}, apperr.Validation("from must not be after to")
	}
	if to.Sub(from) > maxAttendanceRangeDays*24*time.Hour {
		return datatypes.Date{}, datatypes.Date{}, apperr.Validation(fmt.Sprintf("range may not exceed %d days", maxAttendanceRangeDays))
	}
	return models.DateOf(from), models.DateOf(to), nil
}

func (s *attendanceService) today() time.Time {
	return time.Time(models.DateOf(s.now().UTC()))
}

// normalizeMarks validates statuses and keeps the last entry per student.
func normalizeMarks(items []dto.AttendanceMarkItem) ([]repository.AttendanceMark, []apperr.ItemError) {
	invalid := make([]apperr.ItemError, 0)
	position := make(map[uint]int, len(items))
	marks := make([]repository.AttendanceMark, 0, len(items))

	for _, item := range items {
		status := strings.TrimSpace(item.Status)
		if !models.ValidAttendanceStatus(status) {
			invalid = append(invalid, apperr.ItemError{ID: item.StudentID, Reason: fmt.Sprintf("unknown status %q", item.Status)})
			continue
		}
		if idx, ok := position[item.StudentID]; ok {
			marks[idx].Status = status
			continue
		}
		position[item.StudentID] = len(marks)
		marks = append(marks, repository.AttendanceMark{StudentID: item.StudentID, Status: status})
	}
	return marks, invalid
}

func notifiableStatus(status string) bool {
	switch status {
	case models.AttendanceStatusAbsent, models.AttendanceStatusPresent, models.AttendanceStatusLate:
		return true
	default:
		return false
	}
}

func markedBy(actor Actor) *uint {
	if actor.UserID == 0 {
		return nil
	}
	id := actor.UserID
	return &id
}

func scopeOf(classID, sectionID *uint) repository.AttendanceScope {
	return repository.AttendanceScope{ClassID: classID, SectionID: sectionID}
}

// attendancePercentage counts late as attended and half days as half.
func attendancePercentage(row repository.AttendanceSummaryRow) float64 {
	if row.Total == 0 {
		return 0
	}
	attended := float64(row.Present+row.Late) + float64(row.HalfDay)/2
	return math.Round(attended/float64(row.Total)*10000) / 100
}

func holidayIndex(holidays []models.SchoolHoliday) map[string]string {
	index := make(map[string]string, len(holidays))
	for _, holiday := range holidays {
		index[dto.FormatDate(holiday.HolidayDate)] = holiday.Name
	}
	return index
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
