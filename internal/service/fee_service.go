package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

// FeeService assigns individual fee lines to students.
type FeeService interface {
	Assign(ctx context.Context, actor Actor, studentID uint, req dto.FeeAssignRequest) (dto.FeeResponse, error)
	ListByStudent(ctx context.Context, schoolID, studentID uint) ([]dto.FeeResponse, error)
}

type feeService struct {
	students  repository.StudentRepository
	fees      repository.FeeRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewFeeService constructs the fee service.
func NewFeeService(students repository.StudentRepository, fees repository.FeeRepository, validate *validator.Validate, logger zerolog.Logger) FeeService {
	return &feeService{
		students:  students,
		fees:      fees,
		validator: validate,
		logger:    logger.With().Str("component", "fee_service").Logger(),
	}
}

func (s *feeService) Assign(ctx context.Context, actor Actor, studentID uint, req dto.FeeAssignRequest) (dto.FeeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FeeResponse{}, err
	}

	student, err := s.students.GetByID(ctx, actor.SchoolID, studentID)
	if err != nil {
		if isNotFound(err) {
			return dto.FeeResponse{}, apperr.NotFound("student not found")
		}
		return dto.FeeResponse{}, err
	}
	if student.IsDeleted() {
		return dto.FeeResponse{}, apperr.Validation("cannot assign fees to a deleted student")
	}

	dueDate, err := optionalDate(req.DueDate)
	if err != nil {
		return dto.FeeResponse{}, err
	}

	fee := models.StudentFee{
		SchoolID:  actor.SchoolID,
		StudentID: student.ID,
		FeeType:   strings.TrimSpace(req.FeeType),
		Amount:    req.Amount,
		DueDate:   dueDate,
		Status:    models.FeeStatusPending,
	}
	if err := s.fees.Create(ctx, &fee); err != nil {
		return dto.FeeResponse{}, err
	}

	return dto.NewFeeResponse(fee), nil
}

func (s *feeService) ListByStudent(ctx context.Context, schoolID, studentID uint) ([]dto.FeeResponse, error) {
	if _, err := s.students.GetByID(ctx, schoolID, studentID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("student not found")
		}
		return nil, err
	}

	fees, err := s.fees.ListByStudent(ctx, schoolID, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.FeeResponse, 0, len(fees))
	for _, fee := range fees {
		responses = append(responses, dto.NewFeeResponse(fee))
	}
	return responses, nil
}
