package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// ClassRepository manages classes and their sections.
type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	List(ctx context.Context, schoolID uint) ([]models.Class, error)
	GetByID(ctx context.Context, schoolID, id uint) (models.Class, error)
	CreateSection(ctx context.Context, section *models.Section) error
	GetSection(ctx context.Context, schoolID, id uint) (models.Section, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs a class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) List(ctx context.Context, schoolID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("school_id = ?", schoolID).
		Order("ordinal ASC, name ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) GetByID(ctx context.Context, schoolID, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("school_id = ? AND id = ?", schoolID, id).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) CreateSection(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *classRepository) GetSection(ctx context.Context, schoolID, id uint) (models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).Where("school_id = ? AND id = ?", schoolID, id).First(&section).Error; err != nil {
		return models.Section{}, err
	}
	return section, nil
}
