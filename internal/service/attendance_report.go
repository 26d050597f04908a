package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

// MonthlyReport builds a dense student x day grid for one month. Every cell
// resolves to the stored mark, else Holiday when the school is closed, else
// Unmarked.
func (s *attendanceService) MonthlyReport(ctx context.Context, schoolID uint, req dto.MonthlyReportRequest) (dto.MonthlyReportResponse, error) {
	if req.Month < 1 || req.Month > 12 {
		return dto.MonthlyReportResponse{}, apperr.Validation("month must be between 1 and 12")
	}
	if req.Year < 2000 || req.Year > 2100 {
		return dto.MonthlyReportResponse{}, apperr.Validation("year must be between 2000 and 2100")
	}

	spanCtx, span := s.tracer.Start(ctx, "attendance.monthly_report", trace.WithAttributes(
		attribute.Int64("school.id", int64(schoolID)),
		attribute.Int("report.year", req.Year),
		attribute.Int("report.month", req.Month),
	))
	defer span.End()

	cacheKey, cacheable := s.cache.Key(spanCtx, schoolID, monthlyReportKey(req))
	var cached dto.MonthlyReportResponse
	if cacheable && s.cache.Load(spanCtx, cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	students, err := s.reportStudents(spanCtx, schoolID, req)
	if err != nil {
		span.RecordError(err)
		return dto.MonthlyReportResponse{}, err
	}

	first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	from, to := models.DateOf(first), models.DateOf(last)

	ids := make([]uint, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	records, err := s.store.Attendance.ListRange(spanCtx, schoolID, ids, from, to)
	if err != nil {
		span.RecordError(err)
		return dto.MonthlyReportResponse{}, err
	}
	holidays, err := s.store.Holidays.List(spanCtx, schoolID, from, to)
	if err != nil {
		span.RecordError(err)
		return dto.MonthlyReportResponse{}, err
	}

	response := composeMonthlyReport(req.Year, req.Month, students, records, holidays)
	if cacheable {
		s.cache.Store(spanCtx, cacheKey, response)
	}
	return response, nil
}

// MyReport returns the monthly report of the student linked to the caller's login.
func (s *attendanceService) MyReport(ctx context.Context, actor Actor, year, month int) (dto.MonthlyReportResponse, error) {
	student, err := s.store.Students.GetByUserID(ctx, actor.SchoolID, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return dto.MonthlyReportResponse{}, apperr.NotFound("no student is linked to this login")
		}
		return dto.MonthlyReportResponse{}, err
	}

	if year == 0 || month == 0 {
		today := s.today()
		year, month = today.Year(), int(today.Month())
	}

	return s.MonthlyReport(ctx, actor.SchoolID, dto.MonthlyReportRequest{Year: year, Month: month, StudentID: &student.ID})
}

func (s *attendanceService) reportStudents(ctx context.Context, schoolID uint, req dto.MonthlyReportRequest) ([]models.Student, error) {
	if req.StudentID != nil {
		student, err := s.store.Students.GetByID(ctx, schoolID, *req.StudentID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperr.NotFound("student not found")
			}
			return nil, err
		}
		return []models.Student{student}, nil
	}

	students, _, err := s.store.Students.List(ctx, schoolID, repository.StudentFilter{
		ClassID:   req.ClassID,
		SectionID: req.SectionID,
	})
	return students, err
}

func composeMonthlyReport(year, month int, students []models.Student, records []models.Attendance, holidays []models.SchoolHoliday) dto.MonthlyReportResponse {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	marks := make(map[uint]map[string]string, len(students))
	for _, record := range records {
		if marks[record.StudentID] == nil {
			marks[record.StudentID] = make(map[string]string)
		}
		marks[record.StudentID][dto.FormatDate(record.Date)] = record.Status
	}
	closed := holidayIndex(holidays)

	response := dto.MonthlyReportResponse{
		Year:     year,
		Month:    month,
		Days:     days,
		Holidays: make([]dto.HolidayResponse, 0, len(holidays)),
		Students: make([]dto.StudentMonthlyReport, 0, len(students)),
	}
	for _, holiday := range holidays {
		response.Holidays = append(response.Holidays, dto.NewHolidayResponse(holiday))
	}

	for _, student := range students {
		row := dto.StudentMonthlyReport{
			StudentID:   student.ID,
			AdmissionNo: student.AdmissionNo,
			Name:        student.Name,
			RollNumber:  student.RollNumber,
			Days:        make([]dto.DayStatus, 0, days),
			Totals:      make(map[string]int),
		}
		for d := 0; d < days; d++ {
			key := first.AddDate(0, 0, d).Format(dto.DateLayout)
			status := models.AttendanceStatusUnmarked
			if mark, ok := marks[student.ID][key]; ok {
				status = mark
			} else if _, ok := closed[key]; ok {
				status = models.AttendanceStatusHoliday
			}
			row.Days = append(row.Days, dto.DayStatus{Date: key, Status: status})
			row.Totals[status]++
		}
		response.Students = append(response.Students, row)
	}

	return response
}

func monthlyReportKey(req dto.MonthlyReportRequest) string {
	return fmt.Sprintf("monthly:%04d-%02d:c%s:s%s:st%s", req.Year, req.Month, keyPart(req.ClassID), keyPart(req.SectionID), keyPart(req.StudentID))
}

func keyPart(id *uint) string {
	if id == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *id)
}
