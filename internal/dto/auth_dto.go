package dto

import "time"

// LoginRequest authenticates a user of one school.
type LoginRequest struct {
	SchoolCode string `json:"school_code" validate:"required"`
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uint      `json:"user_id"`
	SchoolID  uint      `json:"school_id"`
	Role      string    `json:"role"`
	StudentID *uint     `json:"student_id,omitempty"`
}
