package dto

import (
	"time"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// NotificationResponse serializes one ledger entry.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	Type      string    `json:"type"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		StudentID: notification.StudentID,
		Type:      notification.Type,
		Recipient: notification.Recipient,
		Message:   notification.Message,
		Status:    notification.Status,
		Error:     notification.Error,
		CreatedAt: notification.CreatedAt,
	}
}
