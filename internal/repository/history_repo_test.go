package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/testutil"
)

func TestHolidayUpsertKeepsOneRowPerDate(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := NewHolidayRepository(db)
	day := models.DateOf(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	first := models.SchoolHoliday{SchoolID: fx.School.ID, HolidayDate: day, Name: "Labour Day"}
	require.NoError(t, repo.Upsert(context.Background(), &first))

	second := models.SchoolHoliday{SchoolID: fx.School.ID, HolidayDate: day, Name: "May Day"}
	require.NoError(t, repo.Upsert(context.Background(), &second))
	require.Equal(t, first.ID, second.ID)

	holidays, err := repo.List(context.Background(), fx.School.ID, day, day)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	require.Equal(t, "May Day", holidays[0].Name)

	require.NoError(t, repo.Delete(context.Background(), fx.School.ID, first.ID))
	require.Error(t, repo.Delete(context.Background(), fx.School.ID, first.ID))
}

func TestPromotionHistoryNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := NewPromotionRepository(db)
	student := testutil.CreateStudent(t, db, fx, "ADM-1", "Amy", 1)

	base := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	for i, year := range []string{"2023-2024", "2024-2025"} {
		record := models.StudentPromotion{
			SchoolID:       fx.School.ID,
			StudentID:      student.ID,
			ToAcademicYear: year,
			PromotedAt:     base.AddDate(i, 0, 0),
		}
		require.NoError(t, repo.Append(context.Background(), &record))
	}

	history, err := repo.History(context.Background(), fx.School.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "2024-2025", history[0].ToAcademicYear)
}

func TestFeeDeleteByStudentOnlyTouchesThatStudent(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := NewFeeRepository(db)
	amy := testutil.CreateStudent(t, db, fx, "ADM-1", "Amy", 1)
	bob := testutil.CreateStudent(t, db, fx, "ADM-2", "Bob", 2)

	for _, id := range []uint{amy.ID, amy.ID, bob.ID} {
		fee := models.StudentFee{SchoolID: fx.School.ID, StudentID: id, FeeType: "Tuition", Amount: 100, Status: models.FeeStatusPending}
		require.NoError(t, repo.Create(context.Background(), &fee))
	}

	deleted, err := repo.DeleteByStudent(context.Background(), fx.School.ID, amy.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	remaining, err := repo.ListByStudent(context.Background(), fx.School.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestStoreTransactionRollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	store := NewStore(db)
	student := testutil.CreateStudent(t, db, fx, "ADM-1", "Amy", 1)

	err := store.Transaction(context.Background(), func(tx *Store) error {
		if err := tx.Students.SetRollNumber(context.Background(), fx.School.ID, student.ID, 9); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	reloaded, err := store.Students.GetByID(context.Background(), fx.School.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, *reloaded.RollNumber)
}
