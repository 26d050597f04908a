package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&School{},
		&Class{},
		&Section{},
		&User{},
		&Student{},
		&Attendance{},
		&SchoolHoliday{},
		&StudentPromotion{},
		&StudentFee{},
		&Notification{},
		&ActivityLog{},
	}
}
