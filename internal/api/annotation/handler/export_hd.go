package annotationHandler

import (
	"bytes"
	"time"

	"BioVision/internal/api/annotation"
	"BioVision/internal/export"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"BioVision/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AnnotationHandler) parseFormat(ctx *fiber.Ctx, requestID string) (export.Format, error) {
	errHandler := handlerUtil.New(h.log)

	var q annotation.ExportQuery
	if err := ctx.QueryParser(&q); err != nil {
		return "", errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_query")
	}
	if err := h.validator.Struct(q); err != nil {
		return "", errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	format, ok := export.ParseFormat(q.Format)
	if !ok {
		return "", errHandler.Handle(ctx, requestID, annotation.ErrInvalidFormat, ctx.Path(), "parse_query")
	}
	return format, nil
}

// Export downloads every image's annotations as a file attachment.
func (h *AnnotationHandler) Export(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	format, err := h.parseFormat(ctx, requestID)
	if err != nil || format == "" {
		return err
	}

	var buf bytes.Buffer
	if err := h.annotationService.Export(c, format, &buf); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "export")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"format":     string(format),
		"bytes":      buf.Len(),
	}).Info("Annotations exported")

	ctx.Attachment(format.FileName(time.Now()))
	ctx.Set(fiber.HeaderContentType, format.ContentType())
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (h *AnnotationHandler) UploadExport(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	format, err := h.parseFormat(ctx, requestID)
	if err != nil || format == "" {
		return err
	}

	up, err := h.annotationService.UploadExport(c, format)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_export")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, up)
	}
}
