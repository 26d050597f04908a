package models

import "time"

// StudentPromotion is an append-only record of a class transition.
type StudentPromotion struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SchoolID         uint      `gorm:"not null;index" json:"school_id"`
	StudentID        uint      `gorm:"not null;index" json:"student_id"`
	FromClassID      *uint     `json:"from_class_id"`
	FromSectionID    *uint     `json:"from_section_id"`
	FromAcademicYear string    `gorm:"size:16" json:"from_academic_year"`
	ToClassID        *uint     `json:"to_class_id"`
	ToSectionID      *uint     `json:"to_section_id"`
	ToAcademicYear   string    `gorm:"size:16" json:"to_academic_year"`
	PromotedBy       uint      `json:"promoted_by"`
	Notes            string    `gorm:"type:text" json:"notes"`
	PromotedAt       time.Time `gorm:"not null" json:"promoted_at"`
}
