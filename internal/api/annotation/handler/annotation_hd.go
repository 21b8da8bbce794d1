package annotationHandler

import (
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/annotation"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"BioVision/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const editTimeout = 5 * time.Second

// finish writes the result of an edit, or the error that stopped it.
func (h *AnnotationHandler) finish(ctx *fiber.Ctx, c context.Context, requestID string, res annotation.EditResult, err error, operation string) error {
	errHandler := handlerUtil.New(h.log)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), operation)
	}

	if !res.Changed {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"operation":  operation,
			"hint":       res.Hint,
		}).Debug("Edit left the image unchanged")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func boxID(ctx *fiber.Ctx) (int64, error) {
	id, err := ctx.ParamsInt("boxId")
	if err != nil {
		return 0, annotation.ErrInvalidBoxID
	}
	return int64(id), nil
}

func landmarkID(ctx *fiber.Ctx) (int64, error) {
	id, err := ctx.ParamsInt("landmarkId")
	if err != nil {
		return 0, annotation.ErrInvalidLandmarkID
	}
	return int64(id), nil
}

func (h *AnnotationHandler) Boxes(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	snap, err := h.annotationService.Boxes(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_boxes")
	}
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, snap)
}

func (h *AnnotationHandler) AddBox(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req annotation.AddBoxRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.annotationService.AddBox(c, req)
	return h.finish(ctx, c, requestID, res, err, "add_box")
}

func (h *AnnotationHandler) UpdateBox(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := boxID(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_box")
	}

	var patch annotator.BoxPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	res, err := h.annotationService.UpdateBox(c, id, patch)
	return h.finish(ctx, c, requestID, res, err, "update_box")
}

func (h *AnnotationHandler) DeleteBox(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	id, err := boxID(ctx)
	if err != nil {
		return handlerUtil.New(h.log).Handle(ctx, requestID, err, ctx.Path(), "delete_box")
	}

	res, err := h.annotationService.DeleteBox(c, id)
	return h.finish(ctx, c, requestID, res, err, "delete_box")
}

func (h *AnnotationHandler) SelectBox(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	var req annotation.SelectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return handlerUtil.New(h.log).Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	res, err := h.annotationService.SelectBox(c, req.BoxID)
	return h.finish(ctx, c, requestID, res, err, "select_box")
}

func (h *AnnotationHandler) AddLandmark(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := boxID(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_landmark")
	}

	var req annotation.LandmarkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	res, err := h.annotationService.AddLandmark(c, id, req)
	return h.finish(ctx, c, requestID, res, err, "add_landmark")
}

func (h *AnnotationHandler) UpdateLandmark(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	box, err := boxID(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_landmark")
	}
	lm, err := landmarkID(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_landmark")
	}

	var patch annotator.LandmarkPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	res, err := h.annotationService.UpdateLandmark(c, box, lm, patch)
	return h.finish(ctx, c, requestID, res, err, "update_landmark")
}

func (h *AnnotationHandler) RemoveLandmark(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	box, err := boxID(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_landmark")
	}
	lm, err := landmarkID(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_landmark")
	}

	res, err := h.annotationService.RemoveLandmark(c, box, lm)
	return h.finish(ctx, c, requestID, res, err, "remove_landmark")
}

func (h *AnnotationHandler) SkipLandmark(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	id, err := boxID(ctx)
	if err != nil {
		return handlerUtil.New(h.log).Handle(ctx, requestID, err, ctx.Path(), "skip_landmark")
	}

	res, err := h.annotationService.SkipLandmark(c, id)
	return h.finish(ctx, c, requestID, res, err, "skip_landmark")
}

func (h *AnnotationHandler) Undo(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	res, err := h.annotationService.Undo(c)
	return h.finish(ctx, c, requestID, res, err, "undo")
}

func (h *AnnotationHandler) Redo(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	res, err := h.annotationService.Redo(c)
	return h.finish(ctx, c, requestID, res, err, "redo")
}

func (h *AnnotationHandler) Clear(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), editTimeout)
	defer cancel()

	res, err := h.annotationService.Clear(c)
	return h.finish(ctx, c, requestID, res, err, "clear")
}
