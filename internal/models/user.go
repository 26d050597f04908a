package models

import "time"

// User roles recognised by the authorization middleware.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// User holds login credentials. Student logins are provisioned on admission.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SchoolID     uint      `gorm:"not null;uniqueIndex:idx_users_school_username" json:"school_id"`
	Username     string    `gorm:"size:128;not null;uniqueIndex:idx_users_school_username" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null" json:"role"`
	StudentID    *uint     `gorm:"index" json:"student_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
