package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// PromotionRepository appends and reads promotion history. Rows are never
// updated or deleted.
type PromotionRepository interface {
	Append(ctx context.Context, record *models.StudentPromotion) error
	History(ctx context.Context, schoolID, studentID uint) ([]models.StudentPromotion, error)
}

type promotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository constructs a promotion history repository.
func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Append(ctx context.Context, record *models.StudentPromotion) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *promotionRepository) History(ctx context.Context, schoolID, studentID uint) ([]models.StudentPromotion, error) {
	var records []models.StudentPromotion
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND student_id = ?", schoolID, studentID).
		Order("promoted_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
