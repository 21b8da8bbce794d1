package schemaHandler

import (
	schemaService "BioVision/internal/api/schema/service"
	"BioVision/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SchemaHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	schemaService schemaService.ISchemaService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	schemaService schemaService.ISchemaService,
) *SchemaHandler {
	return &SchemaHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		schemaService: schemaService,
	}
}

func (h *SchemaHandler) Start(srv fiber.Router) {
	srv.Get("/schemas", h.ListSchemas)
	srv.Post("/schemas", h.middleware.NewTokenMiddleware, h.CreateSchema)

	schemas := srv.Group("/schemas")
	schemas.Get("/:schemaId", h.GetSchema)
	schemas.Get("/:schemaId/guide", h.GetGuide)
	schemas.Put("/:schemaId", h.middleware.NewTokenMiddleware, h.UpdateSchema)
	schemas.Delete("/:schemaId", h.middleware.NewTokenMiddleware, h.DeleteSchema)
}
