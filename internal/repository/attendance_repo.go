package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// AttendanceMark is one (student, status) pair of a bulk mark request.
type AttendanceMark struct {
	StudentID uint
	Status    string
}

// AttendanceScope narrows attendance reads to a class and optional section.
type AttendanceScope struct {
	ClassID   *uint
	SectionID *uint
}

// AttendanceRow joins a student with its mark for one day. Status is nil when unmarked.
type AttendanceRow struct {
	StudentID   uint    `json:"student_id"`
	AdmissionNo string  `json:"admission_no"`
	Name        string  `json:"name"`
	RollNumber  *int    `json:"roll_number"`
	Status      *string `json:"status"`
}

// AttendanceSummaryRow aggregates status counts for one student over a range.
type AttendanceSummaryRow struct {
	StudentID   uint   `json:"student_id"`
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	RollNumber  *int   `json:"roll_number"`
	Present     int64  `json:"present"`
	Absent      int64  `json:"absent"`
	Late        int64  `json:"late"`
	HalfDay     int64  `json:"half_day"`
	Total       int64  `json:"total"`
}

// AttendanceRepository persists attendance marks.
type AttendanceRepository interface {
	BulkUpsert(ctx context.Context, schoolID uint, date datatypes.Date, marks []AttendanceMark, markedBy *uint) (int64, error)
	ListByDate(ctx context.Context, schoolID uint, date datatypes.Date, scope AttendanceScope) ([]AttendanceRow, error)
	ListRange(ctx context.Context, schoolID uint, studentIDs []uint, from, to datatypes.Date) ([]models.Attendance, error)
	Summary(ctx context.Context, schoolID uint, scope AttendanceScope, from, to datatypes.Date) ([]AttendanceSummaryRow, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// BulkUpsert writes every mark in a single INSERT ... ON CONFLICT statement.
// Re-marking a (student, date) pair overwrites the previous status.
func (r *attendanceRepository) BulkUpsert(ctx context.Context, schoolID uint, date datatypes.Date, marks []AttendanceMark, markedBy *uint) (int64, error) {
	if len(marks) == 0 {
		return 0, nil
	}

	rows := make([]models.Attendance, 0, len(marks))
	for _, mark := range marks {
		rows = append(rows, models.Attendance{
			SchoolID:  schoolID,
			StudentID: mark.StudentID,
			Date:      date,
			Status:    mark.Status,
			MarkedBy:  markedBy,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *attendanceRepository) ListByDate(ctx context.Context, schoolID uint, date datatypes.Date, scope AttendanceScope) ([]AttendanceRow, error) {
	query := r.db.WithContext(ctx).Table("students AS s").
		Select("s.id AS student_id, s.admission_no, s.name, s.roll_number, a.status").
		Joins("LEFT JOIN attendance AS a ON a.student_id = s.id AND a.date = ?", date).
		Where("s.school_id = ?", schoolID).
		Where("s.status <> ?", models.StudentStatusDeleted)
	query = applyStudentScope(query, scope)

	var rows []AttendanceRow
	if err := query.Order("s.roll_number ASC, s.name ASC, s.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attendanceRepository) ListRange(ctx context.Context, schoolID uint, studentIDs []uint, from, to datatypes.Date) ([]models.Attendance, error) {
	query := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Where("date >= ? AND date <= ?", from, to)
	if studentIDs != nil {
		if len(studentIDs) == 0 {
			return []models.Attendance{}, nil
		}
		query = query.Where("student_id IN ?", studentIDs)
	}

	var records []models.Attendance
	if err := query.Order("date ASC, student_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) Summary(ctx context.Context, schoolID uint, scope AttendanceScope, from, to datatypes.Date) ([]AttendanceSummaryRow, error) {
	query := r.db.WithContext(ctx).Table("students AS s").
		Select(`s.id AS student_id, s.admission_no, s.name, s.roll_number,
			SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END) AS present,
			SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END) AS absent,
			SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END) AS late,
			SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END) AS half_day,
			COUNT(a.id) AS total`,
			models.AttendanceStatusPresent, models.AttendanceStatusAbsent,
			models.AttendanceStatusLate, models.AttendanceStatusHalfDay).
		Joins("LEFT JOIN attendance AS a ON a.student_id = s.id AND a.date >= ? AND a.date <= ?", from, to).
		Where("s.school_id = ?", schoolID).
		Where("s.status <> ?", models.StudentStatusDeleted)
	query = applyStudentScope(query, scope)

	var rows []AttendanceSummaryRow
	if err := query.
		Group("s.id, s.admission_no, s.name, s.roll_number").
		Order("s.roll_number ASC, s.name ASC, s.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyStudentScope(query *gorm.DB, scope AttendanceScope) *gorm.DB {
	if scope.ClassID != nil {
		query = query.Where("s.class_id = ?", *scope.ClassID)
	}
	if scope.SectionID != nil {
		query = query.Where("s.section_id = ?", *scope.SectionID)
	}
	return query
}
