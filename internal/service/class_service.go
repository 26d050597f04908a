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

// ClassService manages the classes and sections of a school.
type ClassService interface {
	Create(ctx context.Context, actor Actor, req dto.ClassCreateRequest) (dto.ClassResponse, error)
	List(ctx context.Context, schoolID uint) ([]dto.ClassResponse, error)
	CreateSection(ctx context.Context, actor Actor, classID uint, req dto.SectionCreateRequest) (dto.SectionResponse, error)
}

type classService struct {
	repo      repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) Create(ctx context.Context, actor Actor, req dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{SchoolID: actor.SchoolID, Name: strings.TrimSpace(req.Name), Ordinal: req.Ordinal}
	if err := s.repo.Create(ctx, &class); err != nil {
		if apperr.IsUniqueViolation(err) {
			return dto.ClassResponse{}, apperr.Conflict("a class with this name already exists", err)
		}
		return dto.ClassResponse{}, err
	}
	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context, schoolID uint) ([]dto.ClassResponse, error) {
	classes, err := s.repo.List(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, dto.NewClassResponse(class))
	}
	return responses, nil
}

func (s *classService) CreateSection(ctx context.Context, actor Actor, classID uint, req dto.SectionCreateRequest) (dto.SectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SectionResponse{}, err
	}

	if _, err := s.repo.GetByID(ctx, actor.SchoolID, classID); err != nil {
		if isNotFound(err) {
			return dto.SectionResponse{}, apperr.NotFound("class not found")
		}
		return dto.SectionResponse{}, err
	}

	section := models.Section{SchoolID: actor.SchoolID, ClassID: classID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateSection(ctx, &section); err != nil {
		if apperr.IsUniqueViolation(err) {
			return dto.SectionResponse{}, apperr.Conflict("a section with this name already exists in the class", err)
		}
		return dto.SectionResponse{}, err
	}
	return dto.NewSectionResponse(section), nil
}
