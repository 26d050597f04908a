package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that take part in multi-statement workflows.
// A Store built inside Transaction binds every repository to the same tx.
type Store struct {
	db            *gorm.DB
	Schools       SchoolRepository
	Students      StudentRepository
	Users         UserRepository
	Classes       ClassRepository
	Attendance    AttendanceRepository
	Holidays      HolidayRepository
	Promotions    PromotionRepository
	Fees          FeeRepository
	Notifications NotificationRepository
	Activity      ActivityLogRepository
}

// NewStore wires every repository on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Schools:       NewSchoolRepository(db),
		Students:      NewStudentRepository(db),
		Users:         NewUserRepository(db),
		Classes:       NewClassRepository(db),
		Attendance:    NewAttendanceRepository(db),
		Holidays:      NewHolidayRepository(db),
		Promotions:    NewPromotionRepository(db),
		Fees:          NewFeeRepository(db),
		Notifications: NewNotificationRepository(db),
		Activity:      NewActivityLogRepository(db),
	}
}

// Transaction runs fn inside BEGIN/COMMIT. Any error returned by fn, or a
// panic, rolls the whole transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// SavePoint marks a point inside the current transaction that RollbackTo can
// return to. Only meaningful on a Store handed out by Transaction.
func (s *Store) SavePoint(name string) error {
	return s.db.SavePoint(name).Error
}

// RollbackTo undoes everything written since the named savepoint while
// keeping the surrounding transaction open.
func (s *Store) RollbackTo(name string) error {
	return s.db.RollbackTo(name).Error
}
