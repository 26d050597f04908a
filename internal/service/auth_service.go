package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

const invalidCredentials = "invalid school, username or password"

// AuthService exchanges credentials for a school-bound bearer token.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	schools   repository.SchoolRepository
	users     repository.UserRepository
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(schools repository.SchoolRepository, users repository.UserRepository, validate *validator.Validate, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &authService{
		schools:   schools,
		users:     users,
		validator: validate,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	school, err := s.schools.GetByCode(ctx, req.SchoolCode)
	if err != nil {
		if isNotFound(err) {
			return dto.LoginResponse{}, apperr.Unauthorized(invalidCredentials)
		}
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, school.ID, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if isNotFound(err) {
			return dto.LoginResponse{}, apperr.Unauthorized(invalidCredentials)
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info().Uint("school_id", school.ID).Str("username", user.Username).Msg("rejected login")
		return dto.LoginResponse{}, apperr.Unauthorized(invalidCredentials)
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       strconv.FormatUint(uint64(user.ID), 10),
		"school_id": school.ID,
		"role":      user.Role,
		"iat":       issuedAt.Unix(),
		"exp":       expiresAt.Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, apperr.Internal("failed to sign token", err)
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		SchoolID:  school.ID,
		Role:      user.Role,
		StudentID: user.StudentID,
	}, nil
}
