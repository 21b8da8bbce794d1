package handlerUtil

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"BioVision/internal/annotator"
	"BioVision/pkg/response"
	websocketPkg "BioVision/pkg/websocket"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStatusMapping(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		name   string
		err    error
		op     string
		status int
		code   string
	}{
		{"response error", response.NewError(404, "box not found"), "delete_box", 404, ""},
		{"wrapped response error", fmt.Errorf("%w: disk full", response.NewError(500, "save failed")), "save", 500, ""},
		{"annotator sentinel", annotator.ErrNoActiveImage, "add_box", 409, "NO_ACTIVE_IMAGE"},
		{"wrapped sentinel", fmt.Errorf("activate: %w", annotator.ErrImageNotFound), "activate", 404, "IMAGE_NOT_FOUND"},
		{"bridge down", fmt.Errorf("%w: dial refused", websocketPkg.ErrNotConnected), "detect", 503, "BRIDGE_UNAVAILABLE"},
		{"bridge failure", &websocketPkg.RemoteError{Action: websocketPkg.ActionDetect, Message: "model missing"}, "detect", 502, "BRIDGE_FAILED"},
		{"body", errors.New("unexpected EOF"), "parse_request_body", 400, "BAD_REQUEST"},
		{"fiber error", fiber.ErrUnprocessableEntity, "parse_form", 422, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return New(logger).Handle(c, "req-1", tt.err, c.Path(), tt.op)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out map[string]interface{}
			require.NoError(t, jsoniter.Unmarshal(body, &out))
			assert.NotEmpty(t, out["error"])
			if tt.code != "" {
				assert.Equal(t, tt.code, out["code"])
			}
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return New(logger).HandleValidationError(c, "req-1", errors.New("name is required"), c.Path())
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
