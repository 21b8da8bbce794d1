package schemaHandler

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/schema"
	"BioVision/internal/entity"
	"BioVision/internal/middleware"
	jwtPkg "BioVision/pkg/jwt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

type fakeSchemaService struct {
	created  []schema.CreateSchemaRequest
	operator string
}

func (f *fakeSchemaService) ListSchemas(ctx context.Context) ([]entity.LandmarkSchema, error) {
	return schema.DefaultSchemas(), nil
}

func (f *fakeSchemaService) GetSchema(ctx context.Context, id string) (entity.LandmarkSchema, error) {
	if s, ok := schema.DefaultSchema(id); ok {
		return s, nil
	}
	return entity.LandmarkSchema{}, schema.ErrSchemaNotFound
}

func (f *fakeSchemaService) CreateSchema(ctx context.Context, req schema.CreateSchemaRequest) (entity.LandmarkSchema, error) {
	f.created = append(f.created, req)
	f.operator, _ = ctx.Value("operator").(string)
	return entity.LandmarkSchema{ID: "custom-1", Name: req.Name, Landmarks: schema.Definitions(req.Landmarks)}, nil
}

func (f *fakeSchemaService) UpdateSchema(ctx context.Context, id string, req schema.UpdateSchemaRequest) (entity.LandmarkSchema, error) {
	return entity.LandmarkSchema{}, schema.ErrSchemaReadOnly
}

func (f *fakeSchemaService) DeleteSchema(ctx context.Context, id string) error {
	return schema.ErrSchemaReadOnly
}

func (f *fakeSchemaService) Guide(ctx context.Context, schemaID string, boxID *int64) (annotator.GuideStep, error) {
	if boxID == nil {
		return annotator.GuideStep{}, schema.ErrNoBoxSelected
	}
	return annotator.GuideStep{SchemaID: schemaID, BoxID: *boxID, Total: 18}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *fakeSchemaService) {
	t.Helper()
	t.Setenv(jwtPkg.SecretEnvKey, "test-secret")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := &fakeSchemaService{}
	app := fiber.New(fiber.Config{StrictRouting: true, CaseSensitive: true})
	mw := middleware.New(logger)
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc).Start(app.Group("/api/v1"))
	return app, svc
}

func decode(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, jsoniter.Unmarshal(raw, v))
}

func TestListSchemas(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/schemas", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out []schema.SchemaSummary
	decode(t, resp.Body, &out)
	require.Len(t, out, 2)
	assert.Equal(t, 18, out[0].LandmarkCount)
	assert.Equal(t, 11, out[1].LandmarkCount)
}

func TestGetSchemaNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/schemas/custom-42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGuideBoxID(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/schemas/butterfly-wing/guide?boxId=7", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var step annotator.GuideStep
	decode(t, resp.Body, &step)
	assert.Equal(t, int64(7), step.BoxID)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/schemas/butterfly-wing/guide?boxId=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/schemas/butterfly-wing/guide", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateSchemaRequiresToken(t *testing.T) {
	app, svc := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/schemas", strings.NewReader(`{"name":"Beetle","landmarks":[{"name":"Tip"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, svc.created)
}

func TestCreateSchema(t *testing.T) {
	app, svc := newTestApp(t)

	token, _, err := jwtPkg.Sign(entity.Operator{ID: "op-1", Username: "curator"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"name":"Beetle","landmarks":[{"name":"Tip"},{"name":"Base"}]}`, fiber.StatusCreated},
		{"no landmarks", `{"name":"Beetle","landmarks":[]}`, fiber.StatusBadRequest},
		{"unnamed landmark", `{"name":"Beetle","landmarks":[{"name":""}]}`, fiber.StatusBadRequest},
		{"no name", `{"landmarks":[{"name":"Tip"}]}`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/schemas", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	require.Len(t, svc.created, 1)
	assert.Len(t, svc.created[0].Landmarks, 2)
	assert.Equal(t, "curator", svc.operator)
}

func TestBuiltInSchemaIsReadOnly(t *testing.T) {
	app, _ := newTestApp(t)

	token, _, err := jwtPkg.Sign(entity.Operator{ID: "op-1", Username: "curator"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/api/v1/schemas/butterfly-wing", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
