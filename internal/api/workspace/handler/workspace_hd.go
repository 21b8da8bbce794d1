package workspaceHandler

import (
	"time"

	"BioVision/internal/api/workspace"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"BioVision/pkg/log"
	"BioVision/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *WorkspaceHandler) ListImages(ctx *fiber.Ctx) error {
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	images := h.workspaceService.ListImages(c)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, images)
	}
}

func (h *WorkspaceHandler) AddImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing add image request")

	var req workspace.AddImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.workspaceService.AddImage(c, req.Path)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, result)
	}
}

func (h *WorkspaceHandler) UploadImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, utils.ErrNoFile, ctx.Path(), "get_form_file")
	}

	result, err := h.workspaceService.UploadImage(c, file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, result)
	}
}

func (h *WorkspaceHandler) GetImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	img, err := h.workspaceService.GetImage(c, ctx.Params("imageId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, img)
	}
}

func (h *WorkspaceHandler) RemoveImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.workspaceService.RemoveImage(c, ctx.Params("imageId")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Image removed from workspace",
		})
	}
}

func (h *WorkspaceHandler) ActivateImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	snap, err := h.workspaceService.ActivateImage(c, ctx.Params("imageId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "activate_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, snap)
	}
}

func (h *WorkspaceHandler) Thumbnail(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	data, err := h.workspaceService.Thumbnail(c, ctx.Params("imageId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "thumbnail")
	}

	ctx.Set("Content-Type", "image/webp")
	ctx.Set("Cache-Control", "private, max-age=300")

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return ctx.Send(data)
	}
}

func (h *WorkspaceHandler) ImageFile(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	path, err := h.workspaceService.ImagePath(c, ctx.Params("imageId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "image_file")
	}
	return ctx.SendFile(path)
}

func (h *WorkspaceHandler) GetTool(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.workspaceService.Tool(contextPkg.FromFiberCtx(ctx)))
}

func (h *WorkspaceHandler) SetTool(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req workspace.ToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	state, err := h.workspaceService.SetTool(c, req.Mode)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "set_tool")
	}
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, state)
}
