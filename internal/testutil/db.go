// Package testutil provides fixtures shared by repository, service and handler tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/sekolah-go-api/internal/models"
)

// NewDB opens an isolated in-memory SQLite database with every model migrated.
// A single connection is used so transactions behave like a pooled client.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixture seeds a school with one class and section.
type Fixture struct {
	School  models.School
	Class   models.Class
	Section models.Section
}

// Seed creates a school, a class named "Grade 1" and its section "A".
func Seed(t *testing.T, db *gorm.DB) Fixture {
	t.Helper()

	school := models.School{Name: "Sunrise School", Code: "SUN-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&school).Error)

	class := models.Class{SchoolID: school.ID, Name: "Grade 1", Ordinal: 1}
	require.NoError(t, db.Create(&class).Error)

	section := models.Section{SchoolID: school.ID, ClassID: class.ID, Name: "A"}
	require.NoError(t, db.Create(&section).Error)

	return Fixture{School: school, Class: class, Section: section}
}

// CreateClass adds a class with one section to school.
func CreateClass(t *testing.T, db *gorm.DB, schoolID uint, name string, ordinal int) (models.Class, models.Section) {
	t.Helper()

	class := models.Class{SchoolID: schoolID, Name: name, Ordinal: ordinal}
	require.NoError(t, db.Create(&class).Error)

	section := models.Section{SchoolID: schoolID, ClassID: class.ID, Name: "A"}
	require.NoError(t, db.Create(&section).Error)

	return class, section
}

// CreateStudent inserts an active student in the fixture's class and section.
func CreateStudent(t *testing.T, db *gorm.DB, fx Fixture, admissionNo, name string, roll int) models.Student {
	t.Helper()

	classID := fx.Class.ID
	sectionID := fx.Section.ID
	student := models.Student{
		SchoolID:     fx.School.ID,
		AdmissionNo:  admissionNo,
		Name:         name,
		RollNumber:   &roll,
		ClassID:      &classID,
		SectionID:    &sectionID,
		AcademicYear: "2024-2025",
		Status:       models.StudentStatusActive,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

// UintPtr returns a pointer to v.
func UintPtr(v uint) *uint {
	return &v
}
