package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// StudentFilter defines filters for listing students of one school.
type StudentFilter struct {
	ClassID        *uint
	SectionID      *uint
	Status         string
	Search         string
	Sort           string
	Page           int
	PageSize       int
	IncludeDeleted bool
}

var studentSortColumns = map[string]string{
	"":             "roll_number ASC, name ASC, id ASC",
	"name":         "name ASC, id ASC",
	"-name":        "name DESC, id DESC",
	"roll_number":  "roll_number ASC, id ASC",
	"admission_no": "admission_no ASC",
	"created_at":   "created_at ASC, id ASC",
	"-created_at":  "created_at DESC, id DESC",
}

// StudentRepository exposes persistence helpers for student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	List(ctx context.Context, schoolID uint, filter StudentFilter) ([]models.Student, int64, error)
	GetByID(ctx context.Context, schoolID, id uint) (models.Student, error)
	GetByIDs(ctx context.Context, schoolID uint, ids []uint) ([]models.Student, error)
	GetByUserID(ctx context.Context, schoolID, userID uint) (models.Student, error)
	Update(ctx context.Context, schoolID, id uint, updates map[string]interface{}) (models.Student, error)
	SetStatus(ctx context.Context, schoolID, id uint, status string) error
	ListActiveInScope(ctx context.Context, schoolID, classID uint, sectionID *uint) ([]models.Student, error)
	SetRollNumber(ctx context.Context, schoolID, id uint, rollNumber int) error
	RollNumberTaken(ctx context.Context, schoolID, classID uint, sectionID *uint, rollNumber int, excludeID uint) (bool, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) List(ctx context.Context, schoolID uint, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).Where("school_id = ?", schoolID)

	switch {
	case filter.Status != "":
		query = query.Where("status = ?", filter.Status)
	case !filter.IncludeDeleted:
		query = query.Where("status <> ?", models.StudentStatusDeleted)
	}

	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.SectionID != nil {
		query = query.Where("section_id = ?", *filter.SectionID)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(admission_no) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := studentSortColumns[filter.Sort]
	if !ok {
		order = studentSortColumns[""]
	}
	query = query.Order(order)

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepository) GetByID(ctx context.Context, schoolID, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("school_id = ? AND id = ?", schoolID, id).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetByIDs(ctx context.Context, schoolID uint, ids []uint) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id IN ?", schoolID, ids).
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) GetByUserID(ctx context.Context, schoolID, userID uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND user_id = ?", schoolID, userID).
		First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) Update(ctx context.Context, schoolID, id uint, updates map[string]interface{}) (models.Student, error) {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("school_id = ? AND id = ?", schoolID, id).
		Where("status <> ?", models.StudentStatusDeleted).
		Updates(updates)
	if result.Error != nil {
		return models.Student{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Student{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, schoolID, id)
}

func (r *studentRepository) SetStatus(ctx context.Context, schoolID, id uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("school_id = ? AND id = ?", schoolID, id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) ListActiveInScope(ctx context.Context, schoolID, classID uint, sectionID *uint) ([]models.Student, error) {
	query := r.db.WithContext(ctx).
		Where("school_id = ? AND class_id = ?", schoolID, classID).
		Where("status <> ?", models.StudentStatusDeleted)
	if sectionID != nil {
		query = query.Where("section_id = ?", *sectionID)
	}

	var students []models.Student
	if err := query.Order("name ASC, roll_number ASC, id ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) SetRollNumber(ctx context.Context, schoolID, id uint, rollNumber int) error {
	return r.db.WithContext(ctx).Model(&models.Student{}).
		Where("school_id = ? AND id = ?", schoolID, id).
		Update("roll_number", rollNumber).Error
}

func (r *studentRepository) RollNumberTaken(ctx context.Context, schoolID, classID uint, sectionID *uint, rollNumber int, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("school_id = ? AND class_id = ? AND roll_number = ?", schoolID, classID, rollNumber).
		Where("status <> ?", models.StudentStatusDeleted)
	if sectionID != nil {
		query = query.Where("section_id = ?", *sectionID)
	} else {
		query = query.Where("section_id IS NULL")
	}
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
