package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// FeeRepository persists individually assigned student fees.
type FeeRepository interface {
	Create(ctx context.Context, fee *models.StudentFee) error
	ListByStudent(ctx context.Context, schoolID, studentID uint) ([]models.StudentFee, error)
	DeleteByStudent(ctx context.Context, schoolID, studentID uint) (int64, error)
}

type feeRepository struct {
	db *gorm.DB
}

// NewFeeRepository constructs a fee repository.
func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) Create(ctx context.Context, fee *models.StudentFee) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

func (r *feeRepository) ListByStudent(ctx context.Context, schoolID, studentID uint) ([]models.StudentFee, error) {
	var fees []models.StudentFee
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND student_id = ?", schoolID, studentID).
		Order("id ASC").
		Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *feeRepository) DeleteByStudent(ctx context.Context, schoolID, studentID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("school_id = ? AND student_id = ?", schoolID, studentID).
		Delete(&models.StudentFee{})
	return result.RowsAffected, result.Error
}
