package modelHandler

import (
	modelService "BioVision/internal/api/model/service"
	"BioVision/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ModelHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	modelService modelService.IModelService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	modelService modelService.IModelService,
) *ModelHandler {
	return &ModelHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		modelService: modelService,
	}
}

func (h *ModelHandler) Start(srv fiber.Router) {
	srv.Get("/models", h.ListModels)

	models := srv.Group("/models")
	models.Post("/train", h.Train)
	models.Get("/:name", h.GetModel)
	models.Post("/:name/test", h.Test)
	models.Put("/:name/rename", h.middleware.NewTokenMiddleware, h.Rename)
	models.Delete("/:name", h.middleware.NewTokenMiddleware, h.Delete)
}
