package labelHandler

import (
	"time"

	"BioVision/internal/api/label"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"BioVision/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *LabelHandler) ListLabels(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	labels, err := h.labelService.ListLabels(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_labels")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, labels)
	}
}

func (h *LabelHandler) GetLabel(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	doc, err := h.labelService.GetLabel(c, ctx.Params("filename"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_label")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, doc)
	}
}

// SaveLabels saves every image in the working set, or only ?imageId= when
// given.
func (h *LabelHandler) SaveLabels(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing save labels request")

	var (
		result label.SaveResult
		err    error
	)
	if imageID := ctx.Query("imageId"); imageID != "" {
		err = h.labelService.SaveImage(c, imageID)
		result = label.SaveResult{Saved: 1, Files: []string{}}
	} else {
		result, err = h.labelService.SaveAll(c)
	}
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "save_labels")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}
