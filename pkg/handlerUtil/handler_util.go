package handlerUtil

import (
	"context"
	"errors"

	"BioVision/internal/annotator"
	"BioVision/pkg/log"
	"BioVision/pkg/response"
	"BioVision/pkg/utils"
	websocketPkg "BioVision/pkg/websocket"
	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

type mapped struct {
	target  error
	status  int
	code    string
	message string
}

// sentinels shared by several domains that are not response errors.
var sentinels = []mapped{
	{annotator.ErrImageNotFound, fiber.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found in workspace"},
	{annotator.ErrImageExists, fiber.StatusConflict, "IMAGE_EXISTS", "Image is already in the workspace"},
	{annotator.ErrNoActiveImage, fiber.StatusConflict, "NO_ACTIVE_IMAGE", "No image is active"},
	{annotator.ErrImageUnavailable, fiber.StatusUnprocessableEntity, "IMAGE_UNAVAILABLE", "Image failed to load and cannot be annotated"},
	{annotator.ErrInvalidMode, fiber.StatusBadRequest, "INVALID_MODE", "Tool mode must be box, landmark or select"},
	{utils.ErrNoFile, fiber.StatusBadRequest, "NO_FILE", "No image file provided"},
	{utils.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image file is too large"},
	{utils.ErrUnsupportedType, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "Unsupported image type"},
	{websocketPkg.ErrNotConnected, fiber.StatusServiceUnavailable, "BRIDGE_UNAVAILABLE", "Detection bridge is not connected"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT", "Operation timed out"},
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		if respErr.Code >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error("Operation failed with error response")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	for _, m := range sentinels {
		if errors.Is(err, m.target) {
			h.logger.WithFields(fields).Warn(m.message)
			return c.Status(m.status).JSON(ErrorResponse{
				Error: m.message,
				Code:  m.code,
			})
		}
	}

	var remoteErr *websocketPkg.RemoteError
	if errors.As(err, &remoteErr) {
		h.logger.WithFields(fields).Warn("Detection bridge reported a failure")
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:   "Detection bridge request failed",
			Code:    "BRIDGE_FAILED",
			Details: remoteErr.Message,
		})
	}

	if operation == "parse_request_body" {
		h.logger.WithFields(fields).Warn("Malformed request body")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Invalid request body",
			Code:    "BAD_REQUEST",
			Details: err.Error(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		h.logger.WithFields(fields).Warn("Request rejected")
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "Internal server error",
		Code:    "INTERNAL",
		Details: "trace id " + traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(fiberUtils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
