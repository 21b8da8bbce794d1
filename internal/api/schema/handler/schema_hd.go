package schemaHandler

import (
	"strconv"
	"time"

	"BioVision/internal/api/schema"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/handlerUtil"
	"BioVision/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *SchemaHandler) ListSchemas(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	schemas, err := h.schemaService.ListSchemas(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_schemas")
	}

	summaries := make([]schema.SchemaSummary, 0, len(schemas))
	for _, s := range schemas {
		summaries = append(summaries, schema.SchemaSummary{
			ID:            s.ID,
			Name:          s.Name,
			Description:   s.Description,
			LandmarkCount: len(s.Landmarks),
			BuiltIn:       s.BuiltIn,
		})
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, summaries)
	}
}

func (h *SchemaHandler) GetSchema(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	s, err := h.schemaService.GetSchema(c, ctx.Params("schemaId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_schema")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, s)
	}
}

func (h *SchemaHandler) GetGuide(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var boxID *int64
	if raw := ctx.Query("boxId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errHandler.Handle(ctx, requestID, schema.ErrInvalidBoxID, ctx.Path(), "parse_box_id")
		}
		boxID = &id
	}

	step, err := h.schemaService.Guide(c, ctx.Params("schemaId"), boxID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "placement_guide")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, step)
	}
}

func (h *SchemaHandler) CreateSchema(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create schema request")

	var req schema.CreateSchemaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	created, err := h.schemaService.CreateSchema(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_schema")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, created)
	}
}

func (h *SchemaHandler) UpdateSchema(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req schema.UpdateSchemaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	updated, err := h.schemaService.UpdateSchema(c, ctx.Params("schemaId"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_schema")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, updated)
	}
}

func (h *SchemaHandler) DeleteSchema(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.schemaService.DeleteSchema(c, ctx.Params("schemaId")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_schema")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Schema deleted successfully",
		})
	}
}
