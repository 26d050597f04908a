package models

import "time"

// Student status values.
const (
	StudentStatusActive     = "Active"
	StudentStatusDeleted    = "Deleted"
	StudentStatusUnassigned = "Unassigned"
)

// Student is the identity row of an admitted learner. AdmissionNo is the
// stable identifier; RollNumber is positional and may be rewritten by a reindex.
type Student struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SchoolID      uint       `gorm:"not null;index;uniqueIndex:idx_students_school_admission" json:"school_id"`
	AdmissionNo   string     `gorm:"size:64;not null;uniqueIndex:idx_students_school_admission" json:"admission_no"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Gender        string     `gorm:"size:16" json:"gender"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	GuardianName  string     `gorm:"size:255" json:"guardian_name"`
	GuardianPhone string     `gorm:"size:32" json:"guardian_phone"`
	GuardianEmail string     `gorm:"size:255" json:"guardian_email"`
	RollNumber    *int       `json:"roll_number"`
	ClassID       *uint      `gorm:"index" json:"class_id"`
	SectionID     *uint      `gorm:"index" json:"section_id"`
	AcademicYear  string     `gorm:"size:16" json:"academic_year"`
	Status        string     `gorm:"size:16;not null;default:Active;index" json:"status"`
	UserID        *uint      `json:"user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsDeleted reports whether the student has been soft deleted.
func (s Student) IsDeleted() bool {
	return s.Status == StudentStatusDeleted
}
