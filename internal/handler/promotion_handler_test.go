package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/handler"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/testutil"
)

func (e *handlerEnv) promotionApp(t *testing.T, role string) *fiber.App {
	t.Helper()

	cache, _ := newReportCache(t)
	activity := service.NewActivityService(e.store.Activity, e.logger)
	svc := service.NewPromotionService(e.store, e.validate, activity, cache, e.logger)

	app := e.app(role)
	handler.NewPromotionHandler(svc, e.logger, e.logger).Register(app.Group("/students"))
	return app
}

func TestPromotionHandlerCollectsPerStudentErrors(t *testing.T) {
	env := newHandlerEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	app := env.promotionApp(t, models.RoleAdmin)

	resp, body := doJSON(t, app, http.MethodPost, "/students/promote", map[string]interface{}{
		"student_ids": []uint{amy.ID, 9999},
		"to_class_id": "vacant",
		"notes":       "<b>left</b> school",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	requireContract(t, "promotion", body)

	var result dto.PromotionResponse
	out := decodeData(t, body, &result)
	require.Equal(t, "students promoted with errors", out.Message)
	require.Equal(t, 1, result.PromotedCount)
	require.Nil(t, result.Promoted[0].ToClassID)
	require.Len(t, result.Errors, 1)
	require.Equal(t, uint(9999), result.Errors[0].StudentID)

	var stored models.Student
	require.NoError(t, env.db.First(&stored, amy.ID).Error)
	require.Equal(t, models.StudentStatusUnassigned, stored.Status)
	require.Nil(t, stored.ClassID)
}

func TestPromotionHandlerMovesToClass(t *testing.T) {
	env := newHandlerEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	grade2, sectionA := testutil.CreateClass(t, env.db, env.fx.School.ID, "Grade 2", 2)
	app := env.promotionApp(t, models.RoleAdmin)

	resp, body := doJSON(t, app, http.MethodPost, "/students/promote", map[string]interface{}{
		"student_ids":      []uint{amy.ID},
		"to_class_id":      grade2.ID,
		"to_section_id":    sectionA.ID,
		"to_academic_year": "2025-2026",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, "students promoted", decodeEnvelope(t, body).Message)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/students/%d/promotion-history", amy.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var history []dto.PromotionHistoryItem
	decodeData(t, body, &history)
	require.Len(t, history, 1)
	require.Equal(t, env.fx.Class.ID, *history[0].FromClassID)
	require.Equal(t, grade2.ID, *history[0].ToClassID)
	require.Equal(t, "2025-2026", history[0].ToAcademicYear)
}

func TestPromotionHandlerRejectsBadTargets(t *testing.T) {
	env := newHandlerEnv(t)
	amy := testutil.CreateStudent(t, env.db, env.fx, "ADM-1", "Amy", 1)
	app := env.promotionApp(t, models.RoleAdmin)

	resp, body := doJSON(t, app, http.MethodPost, "/students/promote", `{"student_ids":[1],"to_class_id":"graduated"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	requireContract(t, "error", body)

	resp, _ = doJSON(t, app, http.MethodPost, "/students/promote", map[string]interface{}{
		"student_ids":      []uint{amy.ID},
		"to_class_id":      9999,
		"to_academic_year": "2025-2026",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	teacherApp := env.promotionApp(t, models.RoleTeacher)
	resp, _ = doJSON(t, teacherApp, http.MethodPost, "/students/promote", map[string]interface{}{
		"student_ids": []uint{amy.ID},
		"to_class_id": "vacant",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, teacherApp, http.MethodGet, "/students/9999/promotion-history", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
