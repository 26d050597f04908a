package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
)

func TestAuthServiceLoginIssuesSchoolBoundToken(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	created, err := env.students().Create(ctx, env.actor, dto.StudentCreateRequest{AdmissionNo: "ADM-5", Name: "Amy", Password: "secret1"})
	require.NoError(t, err)

	svc := NewAuthService(env.store.Schools, env.store.Users, validator.New(), "signing-key", time.Hour, zerolog.Nop())
	resp, err := svc.Login(ctx, dto.LoginRequest{SchoolCode: env.fx.School.Code, Username: "ADM-5", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, env.fx.School.ID, resp.SchoolID)
	require.Equal(t, "student", resp.Role)
	require.Equal(t, created.Student.ID, *resp.StudentID)

	parsed, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("signing-key"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, float64(env.fx.School.ID), claims["school_id"])
	require.Equal(t, "student", claims["role"])
}

func TestAuthServiceLoginRejectsWrongCredentials(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	_, err := env.students().Create(ctx, env.actor, dto.StudentCreateRequest{AdmissionNo: "ADM-5", Name: "Amy", Password: "secret1"})
	require.NoError(t, err)

	svc := NewAuthService(env.store.Schools, env.store.Users, validator.New(), "signing-key", time.Hour, zerolog.Nop())
	for _, req := range []dto.LoginRequest{
		{SchoolCode: env.fx.School.Code, Username: "adm-5", Password: "wrong-pass"},
		{SchoolCode: env.fx.School.Code, Username: "nobody", Password: "secret1"},
		{SchoolCode: "UNKNOWN", Username: "adm-5", Password: "secret1"},
	} {
		_, err := svc.Login(ctx, req)
		require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	}
}
