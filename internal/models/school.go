package models

import "time"

// School is the tenant boundary. Every other row carries its SchoolID.
type School struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Class is a grade level within a school.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SchoolID  uint      `gorm:"not null;uniqueIndex:idx_classes_school_name" json:"school_id"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_classes_school_name" json:"name"`
	Ordinal   int       `gorm:"not null;default:0" json:"ordinal"`
	Sections  []Section `json:"sections,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section subdivides a class.
type Section struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SchoolID  uint      `gorm:"not null;index" json:"school_id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_sections_class_name" json:"class_id"`
	Name      string    `gorm:"size:32;not null;uniqueIndex:idx_sections_class_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
