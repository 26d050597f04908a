package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance status values accepted when marking.
const (
	AttendanceStatusPresent = "Present"
	AttendanceStatusAbsent  = "Absent"
	AttendanceStatusLate    = "Late"
	AttendanceStatusHalfDay = "Half Day"
)

// Report-only statuses for days without an attendance row.
const (
	AttendanceStatusHoliday  = "Holiday"
	AttendanceStatusUnmarked = "Unmarked"
)

// ValidAttendanceStatus reports whether status may be stored on an attendance row.
func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusHalfDay:
		return true
	default:
		return false
	}
}

// Attendance is the single mark for a student on a date.
type Attendance struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SchoolID  uint           `gorm:"not null;index" json:"school_id"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_attendance_student_date" json:"student_id"`
	Date      datatypes.Date `gorm:"not null;index;uniqueIndex:idx_attendance_student_date" json:"date"`
	Status    string         `gorm:"size:16;not null" json:"status"`
	MarkedBy  *uint          `json:"marked_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName pins the table name used by raw upsert statements.
func (Attendance) TableName() string {
	return "attendance"
}

// SchoolHoliday marks a calendar day as a holiday for a school.
type SchoolHoliday struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SchoolID    uint           `gorm:"not null;uniqueIndex:idx_school_holiday_date" json:"school_id"`
	HolidayDate datatypes.Date `gorm:"not null;uniqueIndex:idx_school_holiday_date" json:"holiday_date"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DateOf truncates t to a UTC calendar day.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
