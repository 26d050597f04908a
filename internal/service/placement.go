package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

// validatePlacement checks that class and section exist in the school and
// that the section belongs to the class.
func validatePlacement(ctx context.Context, classes repository.ClassRepository, schoolID uint, classID, sectionID *uint) error {
	if classID == nil {
		if sectionID != nil {
			return apperr.Validation("section_id requires class_id")
		}
		return nil
	}

	if _, err := classes.GetByID(ctx, schoolID, *classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("class not found in this school")
		}
		return err
	}

	if sectionID == nil {
		return nil
	}

	section, err := classes.GetSection(ctx, schoolID, *sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("section not found in this school")
		}
		return err
	}
	if section.ClassID != *classID {
		return apperr.Validation("section does not belong to the class")
	}
	return nil
}
