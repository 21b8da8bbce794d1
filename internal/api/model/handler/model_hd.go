package modelHandler

import (
	"time"

	"BioVision/internal/api/model"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"BioVision/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// Training and testing run for as long as the bridge allows; the handler
// deadline only bounds the HTTP request.
const (
	trainTimeout = time.Hour
	testTimeout  = 15 * time.Minute
)

func (h *ModelHandler) ListModels(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	models, err := h.modelService.ListModels(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_models")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, models)
	}
}

func (h *ModelHandler) GetModel(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	m, err := h.modelService.GetModel(c, ctx.Params("name"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_model")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, m)
	}
}

func (h *ModelHandler) Train(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), trainTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing train request")

	var req model.TrainRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.modelService.Train(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "train_model")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *ModelHandler) Test(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), testTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	result, err := h.modelService.Test(c, ctx.Params("name"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "test_model")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *ModelHandler) Rename(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req model.RenameRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.modelService.RenameModel(c, ctx.Params("name"), req.NewName); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "rename_model")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Model renamed successfully",
		})
	}
}

func (h *ModelHandler) Delete(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.modelService.DeleteModel(c, ctx.Params("name")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_model")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Model deleted successfully",
		})
	}
}
