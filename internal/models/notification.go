package models

import "time"

// Notification delivery results.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification is the ledger entry written for each dispatched guardian notice.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SchoolID  uint      `gorm:"not null;index" json:"school_id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	Type      string    `gorm:"size:64;not null" json:"type"`
	Recipient string    `gorm:"size:255" json:"recipient"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
