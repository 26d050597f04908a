package dto

import (
	"time"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// FeeAssignRequest assigns a fee line to one student.
type FeeAssignRequest struct {
	FeeType string  `json:"fee_type" validate:"required,max=64"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	DueDate string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// FeeResponse serializes a student fee.
type FeeResponse struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	FeeType   string    `json:"fee_type"`
	Amount    float64   `json:"amount"`
	DueDate   string    `json:"due_date,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFeeResponse converts a fee model into a DTO.
func NewFeeResponse(fee models.StudentFee) FeeResponse {
	response := FeeResponse{
		ID:        fee.ID,
		StudentID: fee.StudentID,
		FeeType:   fee.FeeType,
		Amount:    fee.Amount,
		Status:    fee.Status,
		CreatedAt: fee.CreatedAt,
	}
	if fee.DueDate != nil {
		response.DueDate = fee.DueDate.UTC().Format(DateLayout)
	}
	return response
}
