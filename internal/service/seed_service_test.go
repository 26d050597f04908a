package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
)

func seedRequest(code string) dto.SchoolSeedRequest {
	return dto.SchoolSeedRequest{
		Name: "Harapan School",
		Code: code,
		Users: []dto.SeedUserRequest{
			{Username: "Principal", Password: "principal-pass", Role: models.RoleAdmin},
			{Username: "teacher.one", Password: "teacher-pass", Role: models.RoleTeacher},
		},
		Classes: []dto.SeedClassRequest{{Name: "Grade 1", Ordinal: 1, Sections: []string{"A", "B"}}},
	}
}

func TestSeedServiceTokenGuard(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	disabled := NewSeedService(env.store, validator.New(), false, "secret", zerolog.Nop())
	_, err := disabled.BootstrapSchool(ctx, "secret", seedRequest("hrp"))
	require.ErrorIs(t, err, ErrSeedDisabled)

	svc := NewSeedService(env.store, validator.New(), true, "secret", zerolog.Nop())
	_, err = svc.BootstrapSchool(ctx, "wrong", seedRequest("hrp"))
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	blank := NewSeedService(env.store, validator.New(), true, "", zerolog.Nop())
	_, err = blank.BootstrapSchool(ctx, "", seedRequest("hrp"))
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceBootstrapsLoginableSchool(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	svc := NewSeedService(env.store, validator.New(), true, "secret", zerolog.Nop())

	response, err := svc.BootstrapSchool(ctx, "secret", seedRequest("hrp"))
	require.NoError(t, err)
	require.Equal(t, "HRP", response.Code)
	require.Len(t, response.Users, 2)
	require.Equal(t, "principal", response.Users[0].Username)
	require.Len(t, response.Classes, 1)
	require.Len(t, response.Classes[0].Sections, 2)

	auth := NewAuthService(env.store.Schools, env.store.Users, validator.New(), "jwt-secret", 0, zerolog.Nop())
	login, err := auth.Login(ctx, dto.LoginRequest{SchoolCode: "hrp", Username: "principal", Password: "principal-pass"})
	require.NoError(t, err)
	require.Equal(t, response.SchoolID, login.SchoolID)
	require.Equal(t, models.RoleAdmin, login.Role)
}

func TestSeedServiceRollsBackDuplicates(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	svc := NewSeedService(env.store, validator.New(), true, "secret", zerolog.Nop())

	req := seedRequest("dup")
	req.Classes = append(req.Classes, dto.SeedClassRequest{Name: "Grade 1"})

	_, err := svc.BootstrapSchool(ctx, "secret", req)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var schools int64
	require.NoError(t, env.db.Model(&models.School{}).Where("code = ?", "DUP").Count(&schools).Error)
	require.Zero(t, schools)
}
