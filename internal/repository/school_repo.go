package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// SchoolRepository resolves tenants.
type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByCode(ctx context.Context, code string) (models.School, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository constructs a school repository.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepository) GetByCode(ctx context.Context, code string) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&school).Error; err != nil {
		return models.School{}, err
	}
	return school, nil
}
