package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/config"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/handler"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
	"github.com/noah-isme/sekolah-go-api/internal/router"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/testutil"
)

const testSecret = "router-secret"

type apiFixture struct {
	app *fiber.App
	fx  testutil.Fixture
}

func newAPI(t *testing.T) apiFixture {
	t.Helper()

	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	store := repository.NewStore(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	notifier := service.NewNotifier(service.NewLedgerSink(store.Notifications, nil, "", logger), 8, 1, logger)
	notifier.Start(t.Context())
	t.Cleanup(notifier.Close)

	activity := service.NewActivityService(store.Activity, logger)
	cfg := config.Config{AppName: "sekolah-api", JWTSecret: testSecret}

	app := fiber.New()
	middleware.Register(app, middleware.Config{})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(service.NewAuthService(store.Schools, store.Users, validate, testSecret, time.Hour, logger), logger, logger),
		StudentHandler:    handler.NewStudentHandler(service.NewStudentService(store, validate, activity, nil, logger), logger, logger),
		AttendanceHandler: handler.NewAttendanceHandler(service.NewAttendanceService(store, validate, notifier, nil, logger), logger, logger, nil),
		PromotionHandler:  handler.NewPromotionHandler(service.NewPromotionService(store, validate, activity, nil, logger), logger, logger),
		HolidayHandler:    handler.NewHolidayHandler(service.NewHolidayService(store.Holidays, validate, nil, logger), logger, logger),
	})

	return apiFixture{app: app, fx: fx}
}

func (a apiFixture) adminToken(t *testing.T) string {
	return sign(t, jwt.MapClaims{"sub": "1", "school_id": a.fx.School.ID, "role": models.RoleAdmin})
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func call(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (int, map[string]json.RawMessage) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPublicRoutes(t *testing.T) {
	api := newAPI(t)

	status, body := call(t, api.app, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, "true", string(body["success"]))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	resp, err := api.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireTenantToken(t *testing.T) {
	api := newAPI(t)

	status, _ := call(t, api.app, http.MethodGet, "/api/v1/students", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	noSchool := sign(t, jwt.MapClaims{"sub": "1", "role": models.RoleAdmin})
	status, _ = call(t, api.app, http.MethodGet, "/api/v1/students", noSchool, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, api.app, http.MethodGet, "/api/v1/holidays", api.adminToken(t), nil)
	require.Equal(t, http.StatusOK, status)
}

func TestStaticStudentRoutesAreNotShadowed(t *testing.T) {
	api := newAPI(t)
	token := api.adminToken(t)

	status, body := call(t, api.app, http.MethodGet, "/api/v1/students/attendance?date=2024-04-15", token, nil)
	require.Equal(t, http.StatusOK, status, string(body["message"]))

	var listed dto.AttendanceListResponse
	require.NoError(t, json.Unmarshal(body["data"], &listed))
	require.Equal(t, "2024-04-15", listed.Date)

	status, body = call(t, api.app, http.MethodPost, "/api/v1/students/promote", token, map[string]interface{}{
		"student_ids": []uint{12345},
		"to_class_id": "vacant",
	})
	require.Equal(t, http.StatusOK, status, string(body["message"]))
}

func TestLoginThenReadOwnReport(t *testing.T) {
	api := newAPI(t)

	status, body := call(t, api.app, http.MethodPost, "/api/v1/students", api.adminToken(t), map[string]interface{}{
		"admission_no": "ADM-77",
		"name":         "Rina",
		"class_id":     api.fx.Class.ID,
		"section_id":   api.fx.Section.ID,
		"password":     "secret-pass",
	})
	require.Equal(t, http.StatusCreated, status, string(body["message"]))

	status, _ = call(t, api.app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"school_code": api.fx.School.Code,
		"username":    "adm-77",
		"password":    "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, api.app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"school_code": api.fx.School.Code,
		"username":    "ADM-77",
		"password":    "secret-pass",
	})
	require.Equal(t, http.StatusOK, status, string(body["message"]))

	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(body["data"], &login))
	require.Equal(t, models.RoleStudent, login.Role)
	require.NotNil(t, login.StudentID)

	status, body = call(t, api.app, http.MethodGet, "/api/v1/students/attendance/my-report?year=2024&month=2", login.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body["message"]))

	var report dto.MonthlyReportResponse
	require.NoError(t, json.Unmarshal(body["data"], &report))
	require.Equal(t, 29, report.Days)
	require.Len(t, report.Students, 1)
	require.Equal(t, *login.StudentID, report.Students[0].StudentID)

	status, _ = call(t, api.app, http.MethodGet, fmt.Sprintf("/api/v1/students/%d", *login.StudentID), login.Token, nil)
	require.Equal(t, http.StatusForbidden, status)
}
