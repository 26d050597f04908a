package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// HolidayRepository manages the school holiday calendar.
type HolidayRepository interface {
	Upsert(ctx context.Context, holiday *models.SchoolHoliday) error
	List(ctx context.Context, schoolID uint, from, to datatypes.Date) ([]models.SchoolHoliday, error)
	Delete(ctx context.Context, schoolID, id uint) error
}

type holidayRepository struct {
	db *gorm.DB
}

// NewHolidayRepository constructs a holiday repository.
func NewHolidayRepository(db *gorm.DB) HolidayRepository {
	return &holidayRepository{db: db}
}

// Upsert keeps one entry per (school, date); a second write renames it.
func (r *holidayRepository) Upsert(ctx context.Context, holiday *models.SchoolHoliday) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "school_id"}, {Name: "holiday_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(holiday).Error
	if err != nil {
		return err
	}

	var stored models.SchoolHoliday
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND holiday_date = ?", holiday.SchoolID, holiday.HolidayDate).
		First(&stored).Error; err != nil {
		return err
	}
	*holiday = stored
	return nil
}

func (r *holidayRepository) List(ctx context.Context, schoolID uint, from, to datatypes.Date) ([]models.SchoolHoliday, error) {
	var holidays []models.SchoolHoliday
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Where("holiday_date >= ? AND holiday_date <= ?", from, to).
		Order("holiday_date ASC").
		Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (r *holidayRepository) Delete(ctx context.Context, schoolID, id uint) error {
	result := r.db.WithContext(ctx).Where("school_id = ? AND id = ?", schoolID, id).Delete(&models.SchoolHoliday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
