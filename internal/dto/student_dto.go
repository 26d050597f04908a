package dto

import (
	"time"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// StudentCreateRequest captures an admission.
type StudentCreateRequest struct {
	AdmissionNo   string `json:"admission_no" validate:"required,max=64"`
	Name          string `json:"name" validate:"required,max=255"`
	Gender        string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	GuardianName  string `json:"guardian_name" validate:"omitempty,max=255"`
	GuardianPhone string `json:"guardian_phone" validate:"omitempty,max=32"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	RollNumber    *int   `json:"roll_number" validate:"omitempty,min=1"`
	ClassID       *uint  `json:"class_id"`
	SectionID     *uint  `json:"section_id"`
	AcademicYear  string `json:"academic_year" validate:"omitempty,max=16"`
	Password      string `json:"password" validate:"omitempty,min=6,max=72"`
}

// StudentUpdateRequest captures partial updates. Nil fields are left unchanged.
type StudentUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Gender        *string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth   *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	GuardianName  *string `json:"guardian_name" validate:"omitempty,max=255"`
	GuardianPhone *string `json:"guardian_phone" validate:"omitempty,max=32"`
	GuardianEmail *string `json:"guardian_email" validate:"omitempty,email"`
	RollNumber    *int    `json:"roll_number" validate:"omitempty,min=1"`
	ClassID       *uint   `json:"class_id"`
	SectionID     *uint   `json:"section_id"`
	AcademicYear  *string `json:"academic_year" validate:"omitempty,max=16"`
}

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	Page      int
	PageSize  int
	ClassID   *uint
	SectionID *uint
	Status    string
	Search    string
	Sort      string
}

// StudentResponse serializes a student.
type StudentResponse struct {
	ID            uint      `json:"id"`
	AdmissionNo   string    `json:"admission_no"`
	Name          string    `json:"name"`
	Gender        string    `json:"gender,omitempty"`
	DateOfBirth   string    `json:"date_of_birth,omitempty"`
	GuardianName  string    `json:"guardian_name,omitempty"`
	GuardianPhone string    `json:"guardian_phone,omitempty"`
	GuardianEmail string    `json:"guardian_email,omitempty"`
	RollNumber    *int      `json:"roll_number"`
	ClassID       *uint     `json:"class_id"`
	SectionID     *uint     `json:"section_id"`
	AcademicYear  string    `json:"academic_year"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// LoginCredentials are returned once, when the student login is provisioned.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StudentCreateResponse returns the new student and its login.
type StudentCreateResponse struct {
	Student     StudentResponse  `json:"student"`
	Credentials LoginCredentials `json:"credentials"`
}

// RollNumberRequest selects the class (and optional section) to renumber.
type RollNumberRequest struct {
	ClassID   uint  `json:"class_id" validate:"required"`
	SectionID *uint `json:"section_id"`
}

// RollNumberAssignment is one student's new roll number.
type RollNumberAssignment struct {
	StudentID  uint   `json:"student_id"`
	Name       string `json:"name"`
	RollNumber int    `json:"roll_number"`
}

// RollNumberResponse lists the renumbered students in order.
type RollNumberResponse struct {
	ClassID   uint                   `json:"class_id"`
	SectionID *uint                  `json:"section_id"`
	Updated   int                    `json:"updated"`
	Students  []RollNumberAssignment `json:"students"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	response := StudentResponse{
		ID:            student.ID,
		AdmissionNo:   student.AdmissionNo,
		Name:          student.Name,
		Gender:        student.Gender,
		GuardianName:  student.GuardianName,
		GuardianPhone: student.GuardianPhone,
		GuardianEmail: student.GuardianEmail,
		RollNumber:    student.RollNumber,
		ClassID:       student.ClassID,
		SectionID:     student.SectionID,
		AcademicYear:  student.AcademicYear,
		Status:        student.Status,
		CreatedAt:     student.CreatedAt,
		UpdatedAt:     student.UpdatedAt,
	}
	if student.DateOfBirth != nil {
		response.DateOfBirth = student.DateOfBirth.UTC().Format(DateLayout)
	}
	return response
}
