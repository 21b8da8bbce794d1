package modelHandler

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	modelRepository "BioVision/internal/api/model/repository"
	modelService "BioVision/internal/api/model/service"
	"BioVision/internal/entity"
	"BioVision/internal/middleware"
	jwtPkg "BioVision/pkg/jwt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	t.Setenv(jwtPkg.SecretEnvKey, "test-secret")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	svc := modelService.NewModelService(logger, modelRepository.New(dir, logger), nil, nil)

	app := fiber.New(fiber.Config{StrictRouting: true, CaseSensitive: true})
	New(logger, validator.New(), middleware.New(logger), svc).Start(app.Group("/api/v1"))
	return app, dir
}

func bearer(t *testing.T) string {
	t.Helper()
	token, _, err := jwtPkg.Sign(entity.Operator{ID: "op-1", Username: "curator"}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestListAndGetModels(t *testing.T) {
	app, dir := newTestApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "predictor_wings.dat"), []byte("model"), 0o644))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/models", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var models []entity.TrainedModel
	require.NoError(t, jsoniter.Unmarshal(raw, &models))
	require.Len(t, models, 1)
	assert.Equal(t, "wings", models[0].Name)
	assert.Equal(t, int64(5), models[0].Size)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/models/fins", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRenameModel(t *testing.T) {
	app, dir := newTestApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "predictor_a.dat"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "predictor_b.dat"), []byte("x"), 0o644))

	rename := func(name, body string, auth bool) int {
		req := httptest.NewRequest("PUT", "/api/v1/models/"+name+"/rename", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if auth {
			req.Header.Set("Authorization", bearer(t))
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, rename("a", `{"newName":"c"}`, false))
	assert.Equal(t, fiber.StatusBadRequest, rename("a", `{"newName":""}`, true))
	assert.Equal(t, fiber.StatusConflict, rename("a", `{"newName":"b"}`, true))
	assert.Equal(t, fiber.StatusNotFound, rename("zzz", `{"newName":"c"}`, true))
	assert.Equal(t, fiber.StatusOK, rename("a", `{"newName":"c"}`, true))

	_, err := os.Stat(filepath.Join(dir, "predictor_c.dat"))
	assert.NoError(t, err)
}

func TestDeleteModel(t *testing.T) {
	app, dir := newTestApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "predictor_a.dat"), []byte("x"), 0o644))

	req := httptest.NewRequest("DELETE", "/api/v1/models/a", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/v1/models/a", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
