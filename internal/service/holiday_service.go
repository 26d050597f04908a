package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

// HolidayService maintains the school calendar used by attendance reports.
type HolidayService interface {
	Upsert(ctx context.Context, actor Actor, req dto.HolidayRequest) (dto.HolidayResponse, error)
	List(ctx context.Context, schoolID uint, from, to string) ([]dto.HolidayResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type holidayService struct {
	repo      repository.HolidayRepository
	validator *validator.Validate
	cache     *ReportCache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewHolidayService constructs the holiday service.
func NewHolidayService(repo repository.HolidayRepository, validate *validator.Validate, cache *ReportCache, logger zerolog.Logger) HolidayService {
	return &holidayService{
		repo:      repo,
		validator: validate,
		cache:     cache,
		logger:    logger.With().Str("component", "holiday_service").Logger(),
		now:       time.Now,
	}
}

// Upsert creates the holiday or renames the existing one on that date.
func (s *holidayService) Upsert(ctx context.Context, actor Actor, req dto.HolidayRequest) (dto.HolidayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.HolidayResponse{}, err
	}

	day, err := dto.ParseDate(req.Date)
	if err != nil {
		return dto.HolidayResponse{}, apperr.Validation(err.Error())
	}
	name := sanitizeText(req.Name)
	if name == "" {
		return dto.HolidayResponse{}, apperr.Validation("name is required")
	}

	holiday := models.SchoolHoliday{SchoolID: actor.SchoolID, HolidayDate: models.DateOf(day), Name: name}
	if err := s.repo.Upsert(ctx, &holiday); err != nil {
		return dto.HolidayResponse{}, err
	}
	s.cache.Invalidate(ctx, actor.SchoolID)

	return dto.NewHolidayResponse(holiday), nil
}

// List returns holidays in [from, to]; both default to the current calendar year.
func (s *holidayService) List(ctx context.Context, schoolID uint, from, to string) ([]dto.HolidayResponse, error) {
	year := s.now().UTC().Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	if strings.TrimSpace(from) != "" {
		parsed, err := dto.ParseDate(from)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		start = parsed
	}
	if strings.TrimSpace(to) != "" {
		parsed, err := dto.ParseDate(to)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		end = parsed
	}
	if end.Before(start) {
		return nil, apperr.Validation("from must not be after to")
	}

	holidays, err := s.repo.List(ctx, schoolID, models.DateOf(start), models.DateOf(end))
	if err != nil {
		return nil, err
	}

	responses := make([]dto.HolidayResponse, 0, len(holidays))
	for _, holiday := range holidays {
		responses = append(responses, dto.NewHolidayResponse(holiday))
	}
	return responses, nil
}

func (s *holidayService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.repo.Delete(ctx, actor.SchoolID, id); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("holiday not found")
		}
		return err
	}
	s.cache.Invalidate(ctx, actor.SchoolID)
	return nil
}
