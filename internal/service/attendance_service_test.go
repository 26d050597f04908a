package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
	"github.com/noah-isme/sekolah-go-api/internal/testutil"
)

type captureNotifier struct {
	mu      sync.Mutex
	notices []AttendanceNotice
}

func (c *captureNotifier) Enqueue(notice AttendanceNotice) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notice)
	return true
}

func (c *captureNotifier) Start(context.Context) {}

func (c *captureNotifier) Close() {}

func newAttendanceService(env serviceEnv, notifier Notifier, cache *ReportCache) *attendanceService {
	svc := NewAttendanceService(env.store, validator.New(), notifier, cache, zerolog.Nop()).(*attendanceService)
	svc.now = func() time.Time { return time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC) }
	return svc
}

func markRequest(date string, items ...dto.AttendanceMarkItem) dto.AttendanceMarkRequest {
	return dto.AttendanceMarkRequest{Date: date, AttendanceData: items}
}

func TestAttendanceMarkIsLastWriteWins(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	bob := testutil.CreateStudent(t, env.db, env.fx, "ADM-2", "Bob", 2)
	svc := newAttendanceService(env, nil, nil)
	ctx := context.Background()

	resp, err := svc.Mark(ctx, env.actor, markRequest("2024-04-01",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusPresent},
		dto.AttendanceMarkItem{StudentID: bob.ID, Status: models.AttendanceStatusAbsent},
	))
	require.NoError(t, err)
	require.Equal(t, 2, resp.Marked)

	_, err = svc.Mark(ctx, env.actor, markRequest("2024-04-01",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusLate},
	))
	require.NoError(t, err)

	list, err := svc.ListByDate(ctx, env.fx.School.ID, dto.AttendanceQuery{Date: "2024-04-01"})
	require.NoError(t, err)
	require.Len(t, list.Records, 2)
	require.Equal(t, models.AttendanceStatusLate, list.Records[0].Status)
	require.Equal(t, models.AttendanceStatusAbsent, list.Records[1].Status)

	var count int64
	require.NoError(t, env.db.Model(&models.Attendance{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestAttendanceMarkDuplicateInRequestKeepsLast(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	svc := newAttendanceService(env, nil, nil)

	resp, err := svc.Mark(context.Background(), env.actor, markRequest("2024-04-01",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusPresent},
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusHalfDay},
	))
	require.NoError(t, err)
	require.Equal(t, 1, resp.Marked)

	list, err := svc.ListByDate(context.Background(), env.fx.School.ID, dto.AttendanceQuery{Date: "2024-04-01"})
	require.NoError(t, err)
	require.Equal(t, models.AttendanceStatusHalfDay, list.Records[0].Status)
}

func TestAttendanceMarkRejectsBadInputWithoutWriting(t *testing.T) {
	env := newServiceEnv(t)
	other := testutil.Seed(t, env.db)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	outsider := testutil.CreateStudent(t, env.db, other, "ADM-9", "Otto", 1)
	svc := newAttendanceService(env, nil, nil)
	ctx := context.Background()

	_, err := svc.Mark(ctx, env.actor, markRequest("2024-04-01"))
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Mark(ctx, env.actor, markRequest("2024-04-01",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: "Sleeping"},
	))
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Mark(ctx, env.actor, markRequest("2024-04-01",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusPresent},
		dto.AttendanceMarkItem{StudentID: outsider.ID, Status: models.AttendanceStatusPresent},
	))
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var count int64
	require.NoError(t, env.db.Model(&models.Attendance{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAttendanceMarkQueuesGuardianNotices(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	bob := testutil.CreateStudent(t, env.db, env.fx, "ADM-2", "Bob", 2)
	cal := testutil.CreateStudent(t, env.db, env.fx, "ADM-3", "Cal", 3)
	require.NoError(t, env.db.Model(&amy).Update("guardian_email", "amy.parent@example.com").Error)
	require.NoError(t, env.db.Model(&bob).Update("guardian_phone", "+100200300").Error)

	notifier := &captureNotifier{}
	svc := newAttendanceService(env, notifier, nil)

	resp, err := svc.Mark(context.Background(), env.actor, markRequest("2024-04-02",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusAbsent},
		dto.AttendanceMarkItem{StudentID: bob.ID, Status: models.AttendanceStatusHalfDay},
		dto.AttendanceMarkItem{StudentID: cal.ID, Status: models.AttendanceStatusLate},
	))
	require.NoError(t, err)
	require.Equal(t, 1, resp.Notified)
	require.Len(t, notifier.notices, 1)
	require.Equal(t, amy.ID, notifier.notices[0].StudentID)
	require.Equal(t, "amy.parent@example.com", notifier.notices[0].Recipient())
	require.Equal(t, "2024-04-02", notifier.notices[0].Date)
}

func TestAttendanceListByDateResolvesHolidays(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	testutil.CreateStudent(t, env.db, env.fx, "ADM-2", "Bob", 2)
	svc := newAttendanceService(env, nil, nil)
	ctx := context.Background()

	holiday := models.SchoolHoliday{SchoolID: env.fx.School.ID, HolidayDate: models.DateOf(time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)), Name: "Founders Day"}
	require.NoError(t, env.store.Holidays.Upsert(ctx, &holiday))

	_, err := svc.Mark(ctx, env.actor, markRequest("2024-04-10",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusPresent},
	))
	require.NoError(t, err)

	list, err := svc.ListByDate(ctx, env.fx.School.ID, dto.AttendanceQuery{Date: "2024-04-10"})
	require.NoError(t, err)
	require.True(t, list.Holiday)
	require.Equal(t, "Founders Day", list.HolidayName)
	require.Equal(t, models.AttendanceStatusPresent, list.Records[0].Status)
	require.Equal(t, models.AttendanceStatusHoliday, list.Records[1].Status)

	plain, err := svc.ListByDate(ctx, env.fx.School.ID, dto.AttendanceQuery{Date: "2024-04-11"})
	require.NoError(t, err)
	require.False(t, plain.Holiday)
	require.Equal(t, models.AttendanceStatusUnmarked, plain.Records[1].Status)
}

func TestAttendanceMonthlyReportIsDense(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	bob := testutil.CreateStudent(t, env.db, env.fx, "ADM-2", "Bob", 2)
	svc := newAttendanceService(env, nil, nil)
	ctx := context.Background()

	for _, day := range []int{5, 19} {
		holiday := models.SchoolHoliday{SchoolID: env.fx.School.ID, HolidayDate: models.DateOf(time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)), Name: "Holiday"}
		require.NoError(t, env.store.Holidays.Upsert(ctx, &holiday))
	}
	_, err := svc.Mark(ctx, env.actor, markRequest("2024-04-05",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusPresent},
	))
	require.NoError(t, err)
	_, err = svc.Mark(ctx, env.actor, markRequest("2024-04-08",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusAbsent},
	))
	require.NoError(t, err)

	report, err := svc.MonthlyReport(ctx, env.fx.School.ID, dto.MonthlyReportRequest{Year: 2024, Month: 4})
	require.NoError(t, err)
	require.Equal(t, 30, report.Days)
	require.Len(t, report.Holidays, 2)
	require.Len(t, report.Students, 2)

	rows := map[uint]dto.StudentMonthlyReport{}
	for _, row := range report.Students {
		require.Len(t, row.Days, 30)
		rows[row.StudentID] = row
	}

	require.Equal(t, 2, rows[bob.ID].Totals[models.AttendanceStatusHoliday])
	require.Equal(t, 28, rows[bob.ID].Totals[models.AttendanceStatusUnmarked])

	// A real mark beats the holiday on the same day.
	amyRow := rows[amy.ID]
	require.Equal(t, models.AttendanceStatusPresent, amyRow.Days[4].Status)
	require.Equal(t, models.AttendanceStatusAbsent, amyRow.Days[7].Status)
	require.Equal(t, 1, amyRow.Totals[models.AttendanceStatusHoliday])
	require.Equal(t, 27, amyRow.Totals[models.AttendanceStatusUnmarked])
}

func TestAttendanceMonthlyReportLeapFebruary(t *testing.T) {
	env := newServiceEnv(t)
	testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	svc := newAttendanceService(env, nil, nil)

	report, err := svc.MonthlyReport(context.Background(), env.fx.School.ID, dto.MonthlyReportRequest{Year: 2024, Month: 2})
	require.NoError(t, err)
	require.Equal(t, 29, report.Days)

	_, err = svc.MonthlyReport(context.Background(), env.fx.School.ID, dto.MonthlyReportRequest{Year: 2024, Month: 13})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAttendanceMonthlyReportCacheInvalidatedByMark(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	cache, _ := newTestCache(t)
	svc := newAttendanceService(env, nil, cache)
	ctx := context.Background()
	req := dto.MonthlyReportRequest{Year: 2024, Month: 4}

	first, err := svc.MonthlyReport(ctx, env.fx.School.ID, req)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := svc.MonthlyReport(ctx, env.fx.School.ID, req)
	require.NoError(t, err)
	require.True(t, second.CacheHit)

	_, err = svc.Mark(ctx, env.actor, markRequest("2024-04-03",
		dto.AttendanceMarkItem{StudentID: amy.ID, Status: models.AttendanceStatusAbsent},
	))
	require.NoError(t, err)

	third, err := svc.MonthlyReport(ctx, env.fx.School.ID, req)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, models.AttendanceStatusAbsent, third.Students[0].Days[2].Status)
}

// invalidatingHolidays bumps the report generation while a report is loading,
// as a concurrent attendance write would.
type invalidatingHolidays struct {
	repository.HolidayRepository
	onList func()
}

func (h invalidatingHolidays) List(ctx context.Context, schoolID uint, from, to datatypes.Date) ([]models.SchoolHoliday, error) {
	h.onList()
	return h.HolidayRepository.List(ctx, schoolID, from, to)
}

func TestAttendanceMonthlyReportLoadedAcrossWriteIsNotServed(t *testing.T) {
	env := newServiceEnv(t)
	testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	cache, _ := newTestCache(t)
	ctx := context.Background()
	req := dto.MonthlyReportRequest{Year: 2024, Month: 4}

	bumps := 0
	env.store.Holidays = invalidatingHolidays{
		HolidayRepository: env.store.Holidays,
		onList: func() {
			if bumps == 0 {
				cache.Invalidate(ctx, env.fx.School.ID)
			}
			bumps++
		},
	}
	svc := newAttendanceService(env, nil, cache)

	first, err := svc.MonthlyReport(ctx, env.fx.School.ID, req)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := svc.MonthlyReport(ctx, env.fx.School.ID, req)
	require.NoError(t, err)
	require.False(t, second.CacheHit)

	third, err := svc.MonthlyReport(ctx, env.fx.School.ID, req)
	require.NoError(t, err)
	require.True(t, third.CacheHit)
}

func TestAttendanceMyReportUsesLinkedStudent(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	created, err := env.students().Create(ctx, env.actor, dto.StudentCreateRequest{
		AdmissionNo: "ADM-7",
		Name:        "Amy",
		ClassID:     &env.fx.Class.ID,
		Password:    "secret1",
	})
	require.NoError(t, err)
	testutil.CreateStudent(t, env.db, env.fx, "ADM-8", "Bob", 2)

	user, err := env.store.Users.GetByUsername(ctx, env.fx.School.ID, "adm-7")
	require.NoError(t, err)

	svc := newAttendanceService(env, nil, nil)
	report, err := svc.MyReport(ctx, Actor{SchoolID: env.fx.School.ID, UserID: user.ID, Role: models.RoleStudent}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2024, report.Year)
	require.Equal(t, 4, report.Month)
	require.Len(t, report.Students, 1)
	require.Equal(t, created.Student.ID, report.Students[0].StudentID)

	_, err = svc.MyReport(ctx, Actor{SchoolID: env.fx.School.ID, UserID: 9999}, 2024, 4)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAttendanceSummaryAndDaily(t *testing.T) {
	env := newServiceEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	bob := testutil.CreateStudent(t, env.db, env.fx, "ADM-2", "Bob", 2)
	svc := newAttendanceService(env, nil, nil)
	ctx := context.Background()

	marks := []struct {
		date   string
		amy    string
		bobSet bool
	}{
		{"2024-04-01", models.AttendanceStatusPresent, true},
		{"2024-04-02", models.AttendanceStatusHalfDay, false},
		{"2024-04-03", models.AttendanceStatusAbsent, false},
		{"2024-04-04", models.AttendanceStatusLate, false},
	}
	for _, m := range marks {
		items := []dto.AttendanceMarkItem{{StudentID: amy.ID, Status: m.amy}}
		if m.bobSet {
			items = append(items, dto.AttendanceMarkItem{StudentID: bob.ID, Status: models.AttendanceStatusPresent})
		}
		_, err := svc.Mark(ctx, env.actor, markRequest(m.date, items...))
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, env.fx.School.ID, dto.AttendanceQuery{From: "2024-04-01", To: "2024-04-30"})
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	require.Equal(t, int64(4), summary.Items[0].Marked)
	require.Equal(t, 62.5, summary.Items[0].Percentage)
	require.Equal(t, 100.0, summary.Items[1].Percentage)

	daily, err := svc.Daily(ctx, env.fx.School.ID, dto.AttendanceQuery{From: "2024-04-01", To: "2024-04-03"})
	require.NoError(t, err)
	require.Equal(t, 2, daily.Students)
	require.Len(t, daily.Days, 3)
	require.Equal(t, 2, daily.Days[0].Present)
	require.Equal(t, 0, daily.Days[0].Unmarked)
	require.Equal(t, 1, daily.Days[1].HalfDay)
	require.Equal(t, 1, daily.Days[1].Unmarked)

	_, err = svc.Summary(ctx, env.fx.School.ID, dto.AttendanceQuery{From: "2024-04-10", To: "2024-04-01"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

var _ Notifier = (*captureNotifier)(nil)
