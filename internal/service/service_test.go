package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
	"github.com/noah-isme/sekolah-go-api/internal/testutil"
)

type serviceEnv struct {
	db       *gorm.DB
	store    *repository.Store
	fx       testutil.Fixture
	actor    Actor
	activity ActivityService
}

func newServiceEnv(t *testing.T) serviceEnv {
	t.Helper()

	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	store := repository.NewStore(db)

	return serviceEnv{
		db:       db,
		store:    store,
		fx:       fx,
		actor:    Actor{SchoolID: fx.School.ID, UserID: 1, Role: models.RoleAdmin},
		activity: NewActivityService(store.Activity, zerolog.Nop()),
	}
}

func (e serviceEnv) students() StudentService {
	return e.cachedStudents(nil)
}

func (e serviceEnv) cachedStudents(cache *ReportCache) StudentService {
	return NewStudentService(e.store, validator.New(), e.activity, cache, zerolog.Nop())
}
