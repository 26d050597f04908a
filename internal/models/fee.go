package models

import "time"

// Fee status values.
const (
	FeeStatusPending = "Pending"
	FeeStatusPaid    = "Paid"
)

// StudentFee is a fee line assigned to one student. Rows are tied to the
// class the student was in when assigned.
type StudentFee struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SchoolID  uint       `gorm:"not null;index" json:"school_id"`
	StudentID uint       `gorm:"not null;index" json:"student_id"`
	FeeType   string     `gorm:"size:64;not null" json:"fee_type"`
	Amount    float64    `gorm:"not null" json:"amount"`
	DueDate   *time.Time `json:"due_date"`
	Status    string     `gorm:"size:16;not null;default:Pending" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
