package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

const generatedPasswordLength = 10

// StudentService orchestrates admissions and student record maintenance.
type StudentService interface {
	Create(ctx context.Context, actor Actor, req dto.StudentCreateRequest) (dto.StudentCreateResponse, error)
	List(ctx context.Context, schoolID uint, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Get(ctx context.Context, schoolID, id uint) (dto.StudentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Restore(ctx context.Context, actor Actor, id uint) (dto.StudentResponse, error)
	ReorderRollNumbers(ctx context.Context, actor Actor, req dto.RollNumberRequest) (dto.RollNumberResponse, error)
}

type studentService struct {
	store     *repository.Store
	validator *validator.Validate
	activity  ActivityRecorder
	cache     *ReportCache
	logger    zerolog.Logger
}

// NewStudentService constructs the student service. Every successful write
// bumps the report generation because reports list the students in scope.
func NewStudentService(store *repository.Store, validate *validator.Validate, activity ActivityRecorder, cache *ReportCache, logger zerolog.Logger) StudentService {
	return &studentService{
		store:     store,
		validator: validate,
		activity:  activity,
		cache:     cache,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, actor Actor, req dto.StudentCreateRequest) (dto.StudentCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentCreateResponse{}, err
	}

	if err := validatePlacement(ctx, s.store.Classes, actor.SchoolID, req.ClassID, req.SectionID); err != nil {
		return dto.StudentCreateResponse{}, err
	}

	dateOfBirth, err := optionalDate(req.DateOfBirth)
	if err != nil {
		return dto.StudentCreateResponse{}, err
	}

	if req.RollNumber != nil {
		if err := s.ensureRollNumberFree(ctx, s.store.Students, actor.SchoolID, req.ClassID, req.SectionID, *req.RollNumber, 0); err != nil {
			return dto.StudentCreateResponse{}, err
		}
	}

	password := req.Password
	if password == "" {
		password = generatePassword()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dto.StudentCreateResponse{}, apperr.Internal("failed to hash password", err)
	}

	status := models.StudentStatusUnassigned
	if req.ClassID != nil {
		status = models.StudentStatusActive
	}

	admissionNo := strings.TrimSpace(req.AdmissionNo)
	student := models.Student{
		SchoolID:      actor.SchoolID,
		AdmissionNo:   admissionNo,
		Name:          strings.TrimSpace(req.Name),
		Gender:        req.Gender,
		DateOfBirth:   dateOfBirth,
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		GuardianEmail: strings.TrimSpace(req.GuardianEmail),
		RollNumber:    req.RollNumber,
		ClassID:       req.ClassID,
		SectionID:     req.SectionID,
		AcademicYear:  strings.TrimSpace(req.AcademicYear),
		Status:        status,
	}
	user := models.User{
		SchoolID:     actor.SchoolID,
		Username:     strings.ToLower(admissionNo),
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, &user); err != nil {
			return err
		}
		student.UserID = &user.ID
		if err := tx.Students.Create(ctx, &student); err != nil {
			return err
		}
		return tx.Users.LinkStudent(ctx, user.ID, student.ID)
	})
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return dto.StudentCreateResponse{}, apperr.Conflict("a student with this admission number already exists", err)
		}
		return dto.StudentCreateResponse{}, err
	}
	s.cache.Invalidate(ctx, actor.SchoolID)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "student.created",
		EntityType: "student",
		EntityID:   &student.ID,
		Metadata:   map[string]interface{}{"admission_no": student.AdmissionNo},
	})

	return dto.StudentCreateResponse{
		Student:     dto.NewStudentResponse(student),
		Credentials: dto.LoginCredentials{Username: user.Username, Password: password},
	}, nil
}

func (s *studentService) List(ctx context.Context, schoolID uint, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	filter := repository.StudentFilter{
		ClassID:   req.ClassID,
		SectionID: req.SectionID,
		Status:    strings.TrimSpace(req.Status),
		Search:    strings.TrimSpace(req.Search),
		Sort:      req.Sort,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	students, total, err := s.store.Students.List(ctx, schoolID, filter)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}

	return dto.StudentListResponse{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *studentService) Get(ctx context.Context, schoolID, id uint) (dto.StudentResponse, error) {
	student, err := s.findStudent(ctx, s.store.Students, schoolID, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, actor Actor, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	current, err := s.findStudent(ctx, s.store.Students, actor.SchoolID, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if current.IsDeleted() {
		return dto.StudentResponse{}, apperr.Validation("deleted students must be restored before editing")
	}

	classID := current.ClassID
	sectionID := current.SectionID
	if req.ClassID != nil {
		classID = req.ClassID
		if !sameUint(current.ClassID, req.ClassID) && req.SectionID == nil {
			sectionID = nil
		}
	}
	if req.SectionID != nil {
		sectionID = req.SectionID
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0)
	set := func(column string, value interface{}) {
		updates[column] = value
		changed = append(changed, column)
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Gender != nil {
		set("gender", *req.Gender)
	}
	if req.DateOfBirth != nil {
		dob, err := optionalDate(*req.DateOfBirth)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		set("date_of_birth", dob)
	}
	if req.GuardianName != nil {
		set("guardian_name", strings.TrimSpace(*req.GuardianName))
	}
	if req.GuardianPhone != nil {
		set("guardian_phone", strings.TrimSpace(*req.GuardianPhone))
	}
	if req.GuardianEmail != nil {
		set("guardian_email", strings.TrimSpace(*req.GuardianEmail))
	}
	if req.AcademicYear != nil {
		set("academic_year", strings.TrimSpace(*req.AcademicYear))
	}
	if req.ClassID != nil || req.SectionID != nil {
		if err := validatePlacement(ctx, s.store.Classes, actor.SchoolID, classID, sectionID); err != nil {
			return dto.StudentResponse{}, err
		}
		set("class_id", classID)
		set("section_id", sectionID)
		set("status", models.StudentStatusActive)
	}

	rollNumber := current.RollNumber
	if req.RollNumber != nil {
		rollNumber = req.RollNumber
		set("roll_number", *req.RollNumber)
	}
	if rollNumber != nil && (req.RollNumber != nil || req.ClassID != nil || req.SectionID != nil) {
		if err := s.ensureRollNumberFree(ctx, s.store.Students, actor.SchoolID, classID, sectionID, *rollNumber, id); err != nil {
			return dto.StudentResponse{}, err
		}
	}

	if len(updates) == 0 {
		return dto.NewStudentResponse(current), nil
	}

	// Individually assigned fees belong to the old class.
	classChanged := !sameUint(current.ClassID, classID)
	var (
		updated     models.Student
		feesCleared int64
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		updated, err = tx.Students.Update(ctx, actor.SchoolID, id, updates)
		if err != nil {
			return err
		}
		if classChanged {
			feesCleared, err = tx.Fees.DeleteByStudent(ctx, actor.SchoolID, id)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, apperr.NotFound("student not found")
		}
		return dto.StudentResponse{}, err
	}
	s.cache.Invalidate(ctx, actor.SchoolID)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "student.updated",
		EntityType: "student",
		EntityID:   &updated.ID,
		Metadata:   map[string]interface{}{"fields": changed, "fees_cleared": feesCleared},
	})

	return dto.NewStudentResponse(updated), nil
}

// Delete soft deletes the student; history, attendance and fees are kept.
func (s *studentService) Delete(ctx context.Context, actor Actor, id uint) error {
	student, err := s.findStudent(ctx, s.store.Students, actor.SchoolID, id)
	if err != nil {
		return err
	}
	if student.IsDeleted() {
		return nil
	}

	if err := s.store.Students.SetStatus(ctx, actor.SchoolID, id, models.StudentStatusDeleted); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, actor.SchoolID)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "student.deleted",
		EntityType: "student",
		EntityID:   &student.ID,
	})
	return nil
}

func (s *studentService) Restore(ctx context.Context, actor Actor, id uint) (dto.StudentResponse, error) {
	student, err := s.findStudent(ctx, s.store.Students, actor.SchoolID, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if !student.IsDeleted() {
		return dto.StudentResponse{}, apperr.Validation("student is not deleted")
	}

	status := models.StudentStatusUnassigned
	if student.ClassID != nil {
		status = models.StudentStatusActive
	}
	if err := s.store.Students.SetStatus(ctx, actor.SchoolID, id, status); err != nil {
		return dto.StudentResponse{}, err
	}
	student.Status = status
	s.cache.Invalidate(ctx, actor.SchoolID)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "student.restored",
		EntityType: "student",
		EntityID:   &student.ID,
	})

	return dto.NewStudentResponse(student), nil
}

// ReorderRollNumbers renumbers the non-deleted students of a class (and
// optionally a section) 1..N by name, keeping the old roll number as the
// tiebreak for equal names.
func (s *studentService) ReorderRollNumbers(ctx context.Context, actor Actor, req dto.RollNumberRequest) (dto.RollNumberResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RollNumberResponse{}, err
	}

	classID := req.ClassID
	if err := validatePlacement(ctx, s.store.Classes, actor.SchoolID, &classID, req.SectionID); err != nil {
		return dto.RollNumberResponse{}, err
	}

	response := dto.RollNumberResponse{ClassID: req.ClassID, SectionID: req.SectionID}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		students, err := tx.Students.ListActiveInScope(ctx, actor.SchoolID, req.ClassID, req.SectionID)
		if err != nil {
			return err
		}

		assignments := make([]dto.RollNumberAssignment, 0, len(students))
		for i, student := range students {
			roll := i + 1
			if err := tx.Students.SetRollNumber(ctx, actor.SchoolID, student.ID, roll); err != nil {
				return err
			}
			assignments = append(assignments, dto.RollNumberAssignment{StudentID: student.ID, Name: student.Name, RollNumber: roll})
		}
		response.Students = assignments
		response.Updated = len(assignments)
		return nil
	})
	if err != nil {
		return dto.RollNumberResponse{}, err
	}
	s.cache.Invalidate(ctx, actor.SchoolID)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "student.roll_numbers_reordered",
		EntityType: "class",
		EntityID:   &classID,
		Metadata:   map[string]interface{}{"updated": response.Updated},
	})

	return response, nil
}

func (s *studentService) findStudent(ctx context.Context, repo repository.StudentRepository, schoolID, id uint) (models.Student, error) {
	student, err := repo.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, apperr.NotFound("student not found")
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) ensureRollNumberFree(ctx context.Context, repo repository.StudentRepository, schoolID uint, classID, sectionID *uint, roll int, excludeID uint) error {
	if classID == nil {
		return apperr.Validation("roll_number requires class_id")
	}
	taken, err := repo.RollNumberTaken(ctx, schoolID, *classID, sectionID, roll, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("roll number already assigned in this class", nil)
	}
	return nil
}

func optionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := dto.ParseDate(value)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	return &parsed, nil
}

func generatePassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedPasswordLength]
}
