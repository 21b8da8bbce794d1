package workspaceHandler

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"BioVision/internal/annotator"
	"BioVision/internal/api/workspace"
	workspaceService "BioVision/internal/api/workspace/service"
	"BioVision/internal/middleware"
	"BioVision/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("toolmode", func(fl validator.FieldLevel) bool {
		_, ok := annotator.ParseMode(fl.Field().String())
		return ok
	})
	return v
}

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ws := annotator.NewWorkspace(logger)
	t.Cleanup(ws.Close)

	dir := t.TempDir()
	svc := workspaceService.NewWorkspaceService(logger, ws, utils.New(), nil, nil, filepath.Join(dir, "uploads"))

	app := fiber.New(fiber.Config{StrictRouting: true, CaseSensitive: true})
	New(logger, newValidator(), middleware.New(logger), svc).Start(app.Group("/api/v1"))
	return app, dir
}

func pngFile(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
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
	return resp.StatusCode, raw
}

func TestImageLifecycle(t *testing.T) {
	app, dir := newTestApp(t)
	path := pngFile(t, dir, "wing.png", 64, 32)

	code, raw := do(t, app, "POST", "/api/v1/workspace/images", `{"path": "`+path+`"}`)
	require.Equal(t, fiber.StatusCreated, code, string(raw))

	var added workspace.AddImageResult
	require.NoError(t, jsoniter.Unmarshal(raw, &added))
	assert.Equal(t, 64, added.Image.Width)
	assert.True(t, added.Image.Active)

	code, _ = do(t, app, "POST", "/api/v1/workspace/images", `{"path": "`+path+`"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, raw = do(t, app, "GET", "/api/v1/workspace/images", "")
	require.Equal(t, fiber.StatusOK, code)
	var images []workspace.ImageSummary
	require.NoError(t, jsoniter.Unmarshal(raw, &images))
	require.Len(t, images, 1)

	code, _ = do(t, app, "GET", "/api/v1/workspace/images/"+added.Image.ID, "")
	assert.Equal(t, fiber.StatusOK, code)

	code, raw = do(t, app, "GET", "/api/v1/workspace/images/"+added.Image.ID+"/file", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "\x89PNG", string(raw[:4]))

	code, _ = do(t, app, "POST", "/api/v1/workspace/images/"+added.Image.ID+"/activate", "")
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = do(t, app, "DELETE", "/api/v1/workspace/images/"+added.Image.ID, "")
	assert.Equal(t, fiber.StatusOK, code)

	code, raw = do(t, app, "GET", "/api/v1/workspace/images/"+added.Image.ID, "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Contains(t, string(raw), "IMAGE_NOT_FOUND")
}

func TestAddImageValidation(t *testing.T) {
	app, dir := newTestApp(t)

	code, _ := do(t, app, "POST", "/api/v1/workspace/images", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, "POST", "/api/v1/workspace/images", `{"path": "`+filepath.Join(dir, "none.png")+`"}`)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestUploadHandler(t *testing.T) {
	app, _ := newTestApp(t)

	var data bytes.Buffer
	require.NoError(t, png.Encode(&data, image.NewGray(image.Rect(0, 0, 40, 20))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "moth.png")
	require.NoError(t, err)
	_, err = part.Write(data.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/workspace/images/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var added workspace.AddImageResult
	require.NoError(t, jsoniter.Unmarshal(raw, &added))
	assert.Equal(t, "moth.png", added.Image.Filename)
	assert.Equal(t, 20, added.Image.Height)

	req = httptest.NewRequest("POST", "/api/v1/workspace/images/upload", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestToolHandlers(t *testing.T) {
	app, _ := newTestApp(t)

	code, raw := do(t, app, "GET", "/api/v1/workspace/tool", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"mode":"box"}`, string(raw))

	code, raw = do(t, app, "PUT", "/api/v1/workspace/tool", `{"mode": "select"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"mode":"select"}`, string(raw))

	code, _ = do(t, app, "PUT", "/api/v1/workspace/tool", `{"mode": "lasso"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestPointerHandler(t *testing.T) {
	app, dir := newTestApp(t)
	path := pngFile(t, dir, "leaf.png", 300, 300)
	code, _ := do(t, app, "POST", "/api/v1/workspace/images", `{"path": "`+path+`"}`)
	require.Equal(t, fiber.StatusCreated, code)

	pointer := func(kind string, x, y int) annotator.Outcome {
		body := `{"kind": "` + kind + `", "position": {"x": ` + strconv.Itoa(x) + `, "y": ` + strconv.Itoa(y) + `}}`
		code, raw := do(t, app, "POST", "/api/v1/workspace/events/pointer", body)
		require.Equal(t, fiber.StatusOK, code)
		var out annotator.Outcome
		require.NoError(t, jsoniter.Unmarshal(raw, &out))
		return out
	}

	assert.Equal(t, annotator.IntentStartBox, pointer("down", 10, 10).Intent)
	out := pointer("up", 15, 15)
	assert.Equal(t, annotator.IntentDiscardBox, out.Intent)
	assert.False(t, out.Changed)

	pointer("down", 10, 10)
	out = pointer("up", 110, 90)
	assert.Equal(t, annotator.IntentCommitBox, out.Intent)
	assert.True(t, out.Changed)

	code, raw := do(t, app, "POST", "/api/v1/workspace/events/key", `{"key": "z", "ctrl": true}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(raw), `"intent":"undo"`)
}

func TestViewportHandlers(t *testing.T) {
	app, dir := newTestApp(t)
	path := pngFile(t, dir, "leaf.png", 200, 100)
	code, _ := do(t, app, "POST", "/api/v1/workspace/images", `{"path": "`+path+`"}`)
	require.Equal(t, fiber.StatusCreated, code)

	code, raw := do(t, app, "POST", "/api/v1/workspace/viewport/zoom", `{"cursorX": 0, "cursorY": 0, "factor": 2}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(raw), `"scale":2`)

	code, _ = do(t, app, "POST", "/api/v1/workspace/viewport/zoom", `{"factor": 0}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, "POST", "/api/v1/workspace/viewport/resize", `{"width": 800, "height": 600}`)
	assert.Equal(t, fiber.StatusAccepted, code)

	code, raw = do(t, app, "GET", "/api/v1/workspace/viewport", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(raw), `"imageWidth":200`)
}

func TestSocketRequiresUpgrade(t *testing.T) {
	app, _ := newTestApp(t)
	code, _ := do(t, app, "GET", "/api/v1/workspace/ws", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, code)
}
