package workspaceHandler

import (
	"BioVision/internal/annotator"
	"BioVision/internal/api/workspace"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"github.com/gofiber/fiber/v2"
)

func (h *WorkspaceHandler) GetViewport(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.workspaceService.Viewport(contextPkg.FromFiberCtx(ctx)))
}

func (h *WorkspaceHandler) Resize(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req workspace.ResizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.workspaceService.Resize(contextPkg.FromFiberCtx(ctx), req)
	return errHandler.HandleSuccess(ctx, fiber.StatusAccepted, nil)
}

func (h *WorkspaceHandler) Zoom(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req workspace.ZoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.workspaceService.Zoom(contextPkg.FromFiberCtx(ctx), req))
}

func (h *WorkspaceHandler) Pan(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req workspace.PanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.workspaceService.Pan(contextPkg.FromFiberCtx(ctx), req))
}

// Pointer feeds one raw pointer event to the active tool. Rejected input is
// not an error: the outcome carries intent none and an optional hint.
func (h *WorkspaceHandler) Pointer(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var ev annotator.PointerEvent
	if err := ctx.BodyParser(&ev); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.workspaceService.Pointer(contextPkg.FromFiberCtx(ctx), ev))
}

func (h *WorkspaceHandler) Key(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var ev annotator.KeyEvent
	if err := ctx.BodyParser(&ev); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.workspaceService.Key(contextPkg.FromFiberCtx(ctx), ev))
}
