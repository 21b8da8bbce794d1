package annotationHandler

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"BioVision/internal/annotator"
	"BioVision/internal/api/annotation"
	annotationService "BioVision/internal/api/annotation/service"
	"BioVision/internal/entity"
	"BioVision/internal/export"
	"BioVision/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("exportformat", func(fl validator.FieldLevel) bool {
		_, ok := export.ParseFormat(fl.Field().String())
		return ok
	})
	return v
}

func newTestApp(t *testing.T, withImage bool) *fiber.App {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ws := annotator.NewWorkspace(logger)
	t.Cleanup(ws.Close)
	if withImage {
		_, err := ws.AddImage(entity.AnnotatedImage{ID: "beetle", Filename: "beetle.jpg", URL: "/img/beetle", Width: 640, Height: 480})
		require.NoError(t, err)
	}

	app := fiber.New(fiber.Config{StrictRouting: true, CaseSensitive: true})
	svc := annotationService.NewAnnotationService(logger, ws, nil)
	New(logger, newValidator(), middleware.New(logger), svc).Start(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, resp.Header.Get(fiber.HeaderContentDisposition)
}

func editResult(t *testing.T, raw []byte) annotation.EditResult {
	t.Helper()
	var res annotation.EditResult
	require.NoError(t, jsoniter.Unmarshal(raw, &res))
	return res
}

func TestNoActiveImage(t *testing.T) {
	app := newTestApp(t, false)

	code, raw, _ := do(t, app, "GET", "/api/v1/annotation/boxes", "")
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Contains(t, string(raw), "NO_ACTIVE_IMAGE")

	code, _, _ = do(t, app, "POST", "/api/v1/annotation/undo", "")
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestBoxAndLandmarkRoutes(t *testing.T) {
	app := newTestApp(t, true)

	code, raw, _ := do(t, app, "POST", "/api/v1/annotation/boxes", `{"left": 20, "top": 20, "width": 120, "height": 80}`)
	require.Equal(t, fiber.StatusOK, code, string(raw))
	res := editResult(t, raw)
	require.True(t, res.Changed)
	require.NotNil(t, res.Box)
	box := strconv.FormatInt(res.Box.ID, 10)

	code, _, _ = do(t, app, "POST", "/api/v1/annotation/boxes", `{"left": 20, "top": 20, "width": 0, "height": 80}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, raw, _ = do(t, app, "PATCH", "/api/v1/annotation/boxes/"+box, `{"left": 30}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 30.0, editResult(t, raw).Box.Left)

	code, raw, _ = do(t, app, "POST", "/api/v1/annotation/boxes/"+box+"/landmarks", `{"x": 50, "y": 50}`)
	require.Equal(t, fiber.StatusOK, code)
	res = editResult(t, raw)
	require.True(t, res.Changed)
	assert.Equal(t, 1, res.LandmarkIndex)
	lm := strconv.FormatInt(res.Landmark.ID, 10)

	code, raw, _ = do(t, app, "PATCH", "/api/v1/annotation/boxes/"+box+"/landmarks/"+lm, `{"x": 60, "y": 55}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, editResult(t, raw).Changed)

	code, raw, _ = do(t, app, "POST", "/api/v1/annotation/boxes/"+box+"/skip", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, editResult(t, raw).Landmark.IsSkipped)

	code, raw, _ = do(t, app, "DELETE", "/api/v1/annotation/boxes/"+box+"/landmarks/"+lm, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, editResult(t, raw).Changed)

	code, _, _ = do(t, app, "DELETE", "/api/v1/annotation/boxes/"+box+"/landmarks/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, raw, _ = do(t, app, "PUT", "/api/v1/annotation/selection", `{"boxId": null}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Nil(t, editResult(t, raw).Snapshot.SelectedBoxID)

	code, raw, _ = do(t, app, "DELETE", "/api/v1/annotation/boxes/"+box, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, editResult(t, raw).Snapshot.Boxes)

	code, raw, _ = do(t, app, "DELETE", "/api/v1/annotation/boxes/"+box, "")
	require.Equal(t, fiber.StatusOK, code)
	res = editResult(t, raw)
	assert.False(t, res.Changed)
	assert.Equal(t, annotation.HintBoxNotFound, res.Hint)

	code, _, _ = do(t, app, "DELETE", "/api/v1/annotation/boxes/first", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestHistoryRoutes(t *testing.T) {
	app := newTestApp(t, true)

	code, _, _ := do(t, app, "POST", "/api/v1/annotation/boxes", `{"left": 0, "top": 0, "width": 50, "height": 50}`)
	require.Equal(t, fiber.StatusOK, code)

	code, raw, _ := do(t, app, "POST", "/api/v1/annotation/undo", "")
	require.Equal(t, fiber.StatusOK, code)
	res := editResult(t, raw)
	assert.True(t, res.Changed)
	assert.True(t, res.Snapshot.CanRedo)

	code, raw, _ = do(t, app, "POST", "/api/v1/annotation/redo", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, editResult(t, raw).Snapshot.Boxes, 1)

	code, raw, _ = do(t, app, "POST", "/api/v1/annotation/clear", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, editResult(t, raw).Snapshot.Boxes)

	code, raw, _ = do(t, app, "POST", "/api/v1/annotation/redo", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, annotation.HintNothingToRedo, editResult(t, raw).Hint)
}

func TestExportRoutes(t *testing.T) {
	app := newTestApp(t, true)

	code, _, _ := do(t, app, "POST", "/api/v1/annotation/boxes", `{"left": 10, "top": 10, "width": 50, "height": 50}`)
	require.Equal(t, fiber.StatusOK, code)

	code, raw, disposition := do(t, app, "GET", "/api/v1/annotation/export?format=csv", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, strings.HasPrefix(string(raw), "filename,box_id"))
	assert.Contains(t, disposition, "annotations_")
	assert.Contains(t, disposition, ".csv")

	code, raw, _ = do(t, app, "GET", "/api/v1/annotation/export", "")
	require.Equal(t, fiber.StatusOK, code)
	var docs []map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(raw, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "beetle", docs[0]["id"])

	code, _, _ = do(t, app, "GET", "/api/v1/annotation/export?format=xml", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, raw, _ = do(t, app, "POST", "/api/v1/annotation/export/upload?format=json", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	assert.Contains(t, string(raw), "export storage is not configured")
}
