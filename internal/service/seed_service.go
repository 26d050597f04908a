package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService provisions new tenants. It is the only way to create a school
// and its first staff logins.
type SeedService interface {
	BootstrapSchool(ctx context.Context, token string, req dto.SchoolSeedRequest) (dto.SchoolSeedResponse, error)
}

type seedService struct {
	store     *repository.Store
	validator *validator.Validate
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(store *repository.Store, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		store:     store,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) BootstrapSchool(ctx context.Context, token string, req dto.SchoolSeedRequest) (dto.SchoolSeedResponse, error) {
	if !s.enabled {
		return dto.SchoolSeedResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SchoolSeedResponse{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolSeedResponse{}, err
	}

	// Hash outside the transaction; bcrypt is slow and the tx holds a connection.
	hashes := make([]string, len(req.Users))
	for i, user := range req.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.SchoolSeedResponse{}, apperr.Internal("failed to hash password", err)
		}
		hashes[i] = string(hash)
	}

	school := models.School{Name: strings.TrimSpace(req.Name), Code: strings.ToUpper(strings.TrimSpace(req.Code))}
	response := dto.SchoolSeedResponse{Name: school.Name, Code: school.Code}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Schools.Create(ctx, &school); err != nil {
			return err
		}
		response.SchoolID = school.ID

		for i, item := range req.Users {
			user := models.User{
				SchoolID:     school.ID,
				Username:     strings.ToLower(strings.TrimSpace(item.Username)),
				PasswordHash: hashes[i],
				Role:         item.Role,
			}
			if err := tx.Users.Create(ctx, &user); err != nil {
				return err
			}
			response.Users = append(response.Users, dto.SeededUser{ID: user.ID, Username: user.Username, Role: user.Role})
		}

		for _, item := range req.Classes {
			class := models.Class{SchoolID: school.ID, Name: strings.TrimSpace(item.Name), Ordinal: item.Ordinal}
			if err := tx.Classes.Create(ctx, &class); err != nil {
				return err
			}
			for _, name := range item.Sections {
				section := models.Section{SchoolID: school.ID, ClassID: class.ID, Name: strings.TrimSpace(name)}
				if err := tx.Classes.CreateSection(ctx, &section); err != nil {
					return err
				}
				class.Sections = append(class.Sections, section)
			}
			response.Classes = append(response.Classes, dto.NewClassResponse(class))
		}
		return nil
	})
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return dto.SchoolSeedResponse{}, apperr.Conflict("school code, username or class name already exists", err)
		}
		return dto.SchoolSeedResponse{}, err
	}

	s.logger.Info().Uint("school_id", school.ID).Str("code", school.Code).Int("users", len(response.Users)).Msg("school bootstrapped")
	return response, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
