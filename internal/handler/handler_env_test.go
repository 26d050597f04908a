package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
	"github.com/noah-isme/sekolah-go-api/internal/service"
	"github.com/noah-isme/sekolah-go-api/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

type handlerEnv struct {
	db       *gorm.DB
	store    *repository.Store
	fx       testutil.Fixture
	validate *validator.Validate
	logger   zerolog.Logger
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.NewDB(t)
	return &handlerEnv{
		db:       db,
		store:    repository.NewStore(db),
		fx:       testutil.Seed(t, db),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   zerolog.Nop(),
	}
}

// app returns a Fiber app whose requests run as the given role of the
// fixture school.
func (e *handlerEnv) app(role string) *fiber.App {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Use(withIdentity(e.fx.School.ID, 42, role))
	return app
}

func withIdentity(schoolID, userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalSchoolID, schoolID)
		c.Locals(middleware.LocalUserID, userID)
		c.Locals(middleware.LocalUserRole, role)
		return c.Next()
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		switch v := payload.(type) {
		case string:
			body = bytes.NewBufferString(v)
		default:
			data, err := json.Marshal(v)
			require.NoError(t, err)
			body = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()

	var out envelope
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func decodeData(t *testing.T, body []byte, target interface{}) envelope {
	t.Helper()

	out := decodeEnvelope(t, body)
	require.NoError(t, json.Unmarshal(out.Data, target))
	return out
}

func requireContract(t *testing.T, name string, body []byte) {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "contracts", name+".schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func newReportCache(t *testing.T) (*service.ReportCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return service.NewReportCache(client, time.Minute, zerolog.Nop()), server
}
