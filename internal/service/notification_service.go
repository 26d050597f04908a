package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

// NotificationService reads the ledger written by the attendance notifier.
type NotificationService interface {
	ListByStudent(ctx context.Context, schoolID, studentID uint, limit int) ([]dto.NotificationResponse, error)
}

type notificationService struct {
	students      repository.StudentRepository
	notifications repository.NotificationRepository
	logger        zerolog.Logger
}

// NewNotificationService constructs the ledger reader.
func NewNotificationService(students repository.StudentRepository, notifications repository.NotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationService{
		students:      students,
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) ListByStudent(ctx context.Context, schoolID, studentID uint, limit int) ([]dto.NotificationResponse, error) {
	if _, err := s.students.GetByID(ctx, schoolID, studentID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("student not found")
		}
		return nil, apperr.Internal("failed to load student", err)
	}

	items, err := s.notifications.ListByStudent(ctx, schoolID, studentID, limit)
	if err != nil {
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to list notifications")
		return nil, apperr.Internal("failed to list notifications", err)
	}

	response := make([]dto.NotificationResponse, 0, len(items))
	for _, item := range items {
		response = append(response, dto.NewNotificationResponse(item))
	}
	return response, nil
}
