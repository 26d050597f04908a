package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// VacantTarget is the promotion target that withdraws students from any class.
const VacantTarget = "vacant"

// PromotionTarget is either a concrete class id or the "vacant" sentinel.
type PromotionTarget struct {
	ClassID uint
	Vacant  bool
	set     bool
}

// ClassTarget builds a target pointing at classID.
func ClassTarget(classID uint) PromotionTarget {
	return PromotionTarget{ClassID: classID, set: true}
}

// Vacant builds the vacant target.
func Vacant() PromotionTarget {
	return PromotionTarget{Vacant: true, set: true}
}

// IsSet reports whether a target was supplied.
func (t PromotionTarget) IsSet() bool {
	return t.set
}

// UnmarshalJSON accepts a number, a numeric string, or "vacant".
func (t *PromotionTarget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = PromotionTarget{}
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, VacantTarget) {
		*t = Vacant()
		return nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("to_class_id must be a class id or %q", VacantTarget)
	}
	*t = ClassTarget(uint(id))
	return nil
}

// MarshalJSON renders the target the way it is accepted.
func (t PromotionTarget) MarshalJSON() ([]byte, error) {
	switch {
	case !t.set:
		return []byte("null"), nil
	case t.Vacant:
		return json.Marshal(VacantTarget)
	default:
		return json.Marshal(t.ClassID)
	}
}

// PromotionRequest moves a batch of students to a target class.
type PromotionRequest struct {
	StudentIDs     []uint          `json:"student_ids" validate:"required,min=1,dive,required"`
	ToClassID      PromotionTarget `json:"to_class_id"`
	ToSectionID    *uint           `json:"to_section_id"`
	ToAcademicYear string          `json:"to_academic_year" validate:"omitempty,max=16"`
	Notes          string          `json:"notes" validate:"omitempty,max=2000"`
}

// PromotedStudent describes one successful transition.
type PromotedStudent struct {
	StudentID     uint  `json:"student_id"`
	FromClassID   *uint `json:"from_class_id"`
	FromSectionID *uint `json:"from_section_id"`
	ToClassID     *uint `json:"to_class_id"`
	ToSectionID   *uint `json:"to_section_id"`
	FeesCleared   int64 `json:"fees_cleared"`
}

// PromotionError reports a student skipped by the batch.
type PromotionError struct {
	StudentID uint   `json:"student_id"`
	Error     string `json:"error"`
}

// PromotionResponse reports successes and per-student failures side by side.
type PromotionResponse struct {
	PromotedCount int               `json:"promoted_count"`
	Promoted      []PromotedStudent `json:"promoted"`
	Errors        []PromotionError  `json:"errors"`
}

// PromotionHistoryItem serializes one promotion record.
type PromotionHistoryItem struct {
	ID               uint      `json:"id"`
	StudentID        uint      `json:"student_id"`
	FromClassID      *uint     `json:"from_class_id"`
	FromSectionID    *uint     `json:"from_section_id"`
	FromAcademicYear string    `json:"from_academic_year"`
	ToClassID        *uint     `json:"to_class_id"`
	ToSectionID      *uint     `json:"to_section_id"`
	ToAcademicYear   string    `json:"to_academic_year"`
	PromotedBy       uint      `json:"promoted_by"`
	Notes            string    `json:"notes"`
	PromotedAt       time.Time `json:"promoted_at"`
}

// NewPromotionHistoryItem converts a promotion record into a DTO.
func NewPromotionHistoryItem(record models.StudentPromotion) PromotionHistoryItem {
	return PromotionHistoryItem{
		ID:               record.ID,
		StudentID:        record.StudentID,
		FromClassID:      record.FromClassID,
		FromSectionID:    record.FromSectionID,
		FromAcademicYear: record.FromAcademicYear,
		ToClassID:        record.ToClassID,
		ToSectionID:      record.ToSectionID,
		ToAcademicYear:   record.ToAcademicYear,
		PromotedBy:       record.PromotedBy,
		Notes:            record.Notes,
		PromotedAt:       record.PromotedAt,
	}
}
